package render

import (
	"testing"

	"github.com/mailward/mailward/internal/models"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
	}{
		{
			name:     "simple substitution",
			template: "Hello, {{name}}!",
			vars:     map[string]string{"name": "World"},
			want:     "Hello, World!",
		},
		{
			name:     "multiple variables",
			template: "{{greeting}}, {{first_name}} {{last_name}}",
			vars: map[string]string{
				"greeting":   "Hi",
				"first_name": "Ada",
				"last_name":  "Lovelace",
			},
			want: "Hi, Ada Lovelace",
		},
		{
			name:     "missing variable renders empty",
			template: "Hello, {{name}}! Your code is {{code}}.",
			vars:     map[string]string{"name": "Ada"},
			want:     "Hello, Ada! Your code is .",
		},
		{
			name:     "whitespace inside braces",
			template: "Hello, {{ name }}!",
			vars:     map[string]string{"name": "Ada"},
			want:     "Hello, Ada!",
		},
		{
			name:     "no variables",
			template: "Hello, World!",
			vars:     map[string]string{"name": "Ada"},
			want:     "Hello, World!",
		},
		{
			name:     "empty template",
			template: "",
			vars:     map[string]string{"name": "Ada"},
			want:     "",
		},
		{
			name:     "html content",
			template: "<h1>{{title}}</h1><p>{{missing}}</p>",
			vars:     map[string]string{"title": "Welcome"},
			want:     "<h1>Welcome</h1><p></p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Substitute(tt.template, tt.vars)
			if got != tt.want {
				t.Errorf("Substitute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	tmpl := &models.Template{
		Subject:  "Welcome {{first_name}}",
		BodyHTML: "<p>Hello {{name}} ({{email}})</p>",
	}
	ctx := map[string]string{
		"name":       "Ada Lovelace",
		"first_name": "Ada",
		"email":      "ada@example.com",
	}

	subject, body := Render(tmpl, ctx)
	if subject != "Welcome Ada" {
		t.Errorf("subject = %q, want %q", subject, "Welcome Ada")
	}
	if body != "<p>Hello Ada Lovelace (ada@example.com)</p>" {
		t.Errorf("body = %q", body)
	}
}
