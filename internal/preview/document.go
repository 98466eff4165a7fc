// Package preview composes the documents and run results the client shows
// next to a snippet. Nothing here evaluates user code; scripts only ever run
// inside the viewer's sandboxed iframe.
package preview

import (
	"strings"
	"text/template"
)

// User markup is embedded verbatim, so these use text/template.
var (
	runeTemplate = template.Must(template.New("rune").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
      * {
        margin: 0;
        padding: 0;
        box-sizing: border-box;
      }
      body {
        font-family: system-ui, -apple-system, sans-serif;
        padding: 1rem;
      }
{{.CSS}}
    </style>
  </head>
  <body>
{{.HTML}}
    <script>
      try {
{{.JavaScript}}
      } catch (error) {
        console.error('Runtime Error:', error);
        document.body.innerHTML += '<div style="color: red; padding: 1rem; margin-top: 1rem; background: #fee; border: 1px solid red; border-radius: 4px;"><strong>Error:</strong> ' + error.message + '</div>';
      }
    </script>
  </body>
</html>
`))

	cssTemplate = template.Must(template.New("css").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>CSS Preview</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body { font-family: system-ui, -apple-system, sans-serif; padding: 20px; }
{{.}}
  </style>
</head>
<body>
  <div class="container">
    <h1>CSS Preview Demo</h1>
    <p>Your custom styles are applied to this page.</p>
    <button>Click Me</button>
    <div class="box">Sample Box Element</div>
    <ul>
      <li>List item 1</li>
      <li>List item 2</li>
      <li>List item 3</li>
    </ul>
  </div>
</body>
</html>
`))
)

// BuildRuneDocument returns a standalone HTML document for a rune. Script
// errors are caught and shown in a red box at the end of the body.
func BuildRuneDocument(html, css, javascript string) string {
	var b strings.Builder
	_ = runeTemplate.Execute(&b, struct{ HTML, CSS, JavaScript string }{html, css, javascript})
	return b.String()
}

// BuildCSSPreview applies css to a small demo page.
func BuildCSSPreview(css string) string {
	var b strings.Builder
	_ = cssTemplate.Execute(&b, css)
	return b.String()
}
