package llm

import "strings"

// turn is one or more consecutive messages from the same role, folded
// together for providers that require strictly alternating roles.
type turn struct {
	role   Role
	texts  []string
	images []string
}

// text joins the turn's text chunks with a blank line.
func (t turn) text() string {
	return strings.Join(t.texts, "\n\n")
}

// foldTurns merges runs of same-role messages. Blank text is dropped and
// images are kept only on user turns.
func foldTurns(msgs []Message) []turn {
	var out []turn
	for _, m := range msgs {
		if len(out) == 0 || out[len(out)-1].role != m.Role {
			out = append(out, turn{role: m.Role})
		}
		t := &out[len(out)-1]
		if m.Image != "" && m.Role == RoleUser {
			t.images = append(t.images, m.Image)
		}
		if s := strings.TrimSpace(m.Content); s != "" {
			t.texts = append(t.texts, s)
		}
	}
	return out
}
