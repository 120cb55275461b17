// Package nav resolves the control-panel navigation tree.
//
// A default tree is registered in code (core sections plus addon extensions) and
// merged with a preferences document using the action grammar: @inherit, @alias,
// @move, @remove, @create and @modify. Building never fails: references that do
// not resolve and malformed entries leave the default tree intact.
package nav
