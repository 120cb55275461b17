package nocache

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"regexp"
)

const placeholderText = "NOCACHE_PLACEHOLDER"

var placeholderPattern = regexp.MustCompile(`<span class="nocache" data-nocache="([^"]*)">` + placeholderText + `</span>`)

// Placeholder returns the marker left in cached html for the named region.
func Placeholder(name string) string {
	return fmt.Sprintf(`<span class="nocache" data-nocache="%s">%s</span>`, html.EscapeString(name), placeholderText)
}

// HasPlaceholders reports whether content contains any region marker.
func HasPlaceholders(content string) bool {
	return placeholderPattern.MatchString(content)
}

// Replacer substitutes rendered fragments into cached html.
type Replacer struct {
	renderer Renderer
}

func NewReplacer(renderer Renderer) *Replacer {
	return &Replacer{renderer: renderer}
}

// Replace restores session and swaps every placeholder in content for its
// rendered fragment. Content without placeholders is returned untouched and
// the session is not restored. Placeholders naming an unknown region render
// as nothing.
func (r *Replacer) Replace(ctx context.Context, session *Session, content string) (string, error) {
	if !HasPlaceholders(content) {
		return content, nil
	}
	if err := session.Restore(ctx); err != nil {
		return "", err
	}

	var errs []error
	out := placeholderPattern.ReplaceAllStringFunc(content, func(marker string) string {
		name := html.UnescapeString(placeholderPattern.FindStringSubmatch(marker)[1])
		region := session.Region(name)
		if region == nil {
			slog.WarnContext(ctx, "Nocache region missing from session", "url", session.URL(), "region", name)
			return ""
		}
		rendered, err := region.Fragment(session.Cascade()).Render(ctx, r.renderer)
		if err != nil {
			errs = append(errs, err)
			return ""
		}
		return rendered
	})
	if err := errors.Join(errs...); err != nil {
		return "", fmt.Errorf("failed to render nocache regions for %s: %w", session.URL(), err)
	}
	return out, nil
}

// RenderAll renders every region of an already restored session, keyed by
// region name.
func (r *Replacer) RenderAll(ctx context.Context, session *Session) (map[string]string, error) {
	out := make(map[string]string, len(session.regions))
	for _, region := range session.regions {
		rendered, err := region.Fragment(session.Cascade()).Render(ctx, r.renderer)
		if err != nil {
			return nil, fmt.Errorf("failed to render nocache region %q: %w", region.Name, err)
		}
		out[region.Name] = rendered
	}
	return out, nil
}
