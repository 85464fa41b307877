package extract

import (
	"testing"
)

func TestActions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Action
	}{
		{
			name: "items interleaved with other markup",
			body: `<html><body><h2>Follow-up actions</h2>
<p>Thanks for canvassing!</p>
<ul>
<li>Ann Smith - 1 High St</li>
<li>Bob Jones - 2 Low Rd</li>
<li>Cat Doe - 3 Mid Ln</li>
</ul>
<p>See you next week.</p></body></html>`,
			want: []Action{
				{Name: "Ann Smith", Address: "1 High St"},
				{Name: "Bob Jones", Address: "2 Low Rd"},
				{Name: "Cat Doe", Address: "3 Mid Ln"},
			},
		},
		{
			name: "non-greedy stops at first closing tag",
			body: `<li>Ann Smith - 1 High St</li><li>Bob Jones - 2 Low Rd</li>`,
			want: []Action{
				{Name: "Ann Smith", Address: "1 High St"},
				{Name: "Bob Jones", Address: "2 Low Rd"},
			},
		},
		{
			name: "first separator splits, rest stays in address",
			body: `<li>Ann Smith - Flat 2 - 1 High St</li>`,
			want: []Action{
				{Name: "Ann Smith", Address: "Flat 2 - 1 High St"},
			},
		},
		{
			name: "malformed item without separator is skipped",
			body: `<li>Ann Smith, 1 High St</li><li>Bob Jones - 2 Low Rd</li>`,
			want: []Action{
				{Name: "Bob Jones", Address: "2 Low Rd"},
			},
		},
		{
			name: "item spanning lines is skipped",
			body: "<li>Ann Smith -\n1 High St</li>",
			want: nil,
		},
		{
			name: "no items yields empty, not error",
			body: `<p>Nothing to do this week.</p>`,
			want: nil,
		},
		{
			name: "empty body",
			body: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Actions(tt.body)
			if len(got) != len(tt.want) {
				t.Fatalf("Actions() returned %d actions, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("action[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestActionsIsPure(t *testing.T) {
	body := `<li>Ann Smith - 1 High St</li>`
	first := Actions(body)
	second := Actions(body)
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("repeated extraction differs: %+v vs %+v", first, second)
	}
}

func TestReadSession(t *testing.T) {
	body := `<html><body>
<h2>Follow-up actions from your canvassing session</h2>
<ul><li>Ann Smith - 1 High St</li><li>broken item</li></ul>
</body></html>`

	s := ReadSession(body)
	if s.Title != "Follow-up actions from your canvassing session" {
		t.Errorf("Title = %q", s.Title)
	}
	if s.Items != 2 {
		t.Errorf("Items = %d, want 2", s.Items)
	}

	if z := ReadSession(""); z.Items != 0 || z.Title != "" {
		t.Errorf("empty body: got %+v, want zero Session", z)
	}
}
