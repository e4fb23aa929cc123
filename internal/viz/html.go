package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "tree", "force", "circle", or "grid"
	Title  string // page title
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Layout: "tree",
		Title:  "App Structure",
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"tree", "force", "circle", "grid"}

// GenerateHTML generates a self-contained HTML file for the graph visualization.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}

	title := opts.Title
	if title == "" {
		title = DefaultOptions().Title
	}

	if graph.IsEmpty() {
		return generateEmptyHTML(title)
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     title,
		GraphJSON: template.JS(graphJSON),
		Layout:    layoutToCytoscape(opts.Layout),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// validateLayout checks if the layout option is valid.
func validateLayout(layout string) error {
	switch layout {
	case "", "tree", "force", "circle", "grid":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be tree, force, circle, or grid", layout)
	}
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	GraphJSON template.JS
	Layout    string
}

// layoutToCytoscape converts user-friendly layout names to Cytoscape.js layout algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "force":
		return "cose"
	case "circle":
		return "circle"
	case "grid":
		return "grid"
	default:
		return "breadthfirst"
	}
}

var emptyTemplate = template.Must(template.New("empty").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.}} - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state { text-align: center; color: #666; }
    .empty-state h2 { margin-bottom: 0.5em; color: #333; }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No components to show</h2>
    <p>The navigation tree has no visible components at this depth.</p>
  </div>
</body>
</html>`))

// generateEmptyHTML returns HTML for an empty graph state.
func generateEmptyHTML(title string) (string, error) {
	var buf bytes.Buffer
	if err := emptyTemplate.Execute(&buf, title); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    * { box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0;
      background: #f5f5f5;
    }
    #cy { width: 100%; height: 100vh; background: white; }
    #tooltip {
      position: absolute;
      display: none;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 320px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    #tooltip .type { font-size: 10px; color: #888; margin-bottom: 4px; }
    #tooltip .label { font-weight: bold; margin-bottom: 4px; }
    #tooltip .detail { color: #555; margin: 2px 0; }
  </style>
</head>
<body>
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const layout = "{{.Layout}}";

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: [
          {
            selector: 'node',
            style: {
              'shape': 'round-rectangle',
              'background-color': '#ECF0F1',
              'border-width': 1,
              'border-color': '#95A5A6',
              'label': 'data(label)',
              'color': '#333',
              'font-size': '11px',
              'text-valign': 'center',
              'text-halign': 'center',
              'width': 'label',
              'height': '28px',
              'padding': '8px'
            }
          },
          {
            selector: 'node[role="root"]',
            style: {
              'background-color': '#2C3E50',
              'border-color': '#2C3E50',
              'color': 'white',
              'font-weight': 'bold'
            }
          },
          {
            selector: 'node[role="titled"]',
            style: {
              'background-color': '#D6EAF8',
              'border-color': '#4A90D9'
            }
          },
          {
            selector: 'node[role="event"]',
            style: {
              'background-color': '#D5F5E3',
              'border-color': '#27AE60',
              'border-width': 2
            }
          },
          {
            selector: 'node[role="plain"]',
            style: {
              'color': '#777',
              'font-style': 'italic'
            }
          },
          {
            selector: 'edge',
            style: {
              'line-color': '#BDC3C7',
              'target-arrow-color': '#BDC3C7',
              'target-arrow-shape': 'triangle',
              'curve-style': 'bezier',
              'width': 1.5
            }
          },
          {
            selector: 'node.highlighted',
            style: { 'border-width': 3, 'border-color': '#ff6b6b' }
          },
          {
            selector: 'node.dimmed',
            style: { 'opacity': 0.3 }
          },
          {
            selector: 'edge.dimmed',
            style: { 'opacity': 0.2 }
          }
        ],
        layout: {
          name: layout,
          animate: false,
          directed: true,
          spacingFactor: 1.1,
          nodeRepulsion: 8000,
          idealEdgeLength: 100
        }
      });

      const tooltip = document.getElementById('tooltip');

      function escapeHtml(str) {
        if (!str) return '';
        return str.replace(/&/g, '&amp;')
                  .replace(/</g, '&lt;')
                  .replace(/>/g, '&gt;')
                  .replace(/"/g, '&quot;');
      }

      function nodeTooltip(node) {
        const data = node.data();
        let html = '<div class="type">' + escapeHtml(data.type) + '</div>';
        html += '<div class="label">' + escapeHtml(data.label) + '</div>';
        html += '<div class="detail">uuid: ' + escapeHtml(data.id) + '</div>';
        if (data.eventId) html += '<div class="detail">event: ' + escapeHtml(data.eventId) + '</div>';
        return html;
      }

      cy.on('mouseover', 'node', function(evt) {
        tooltip.innerHTML = nodeTooltip(evt.target);
        tooltip.style.display = 'block';
        const pos = evt.renderedPosition || evt.position;
        tooltip.style.left = (pos.x + 15) + 'px';
        tooltip.style.top = (pos.y + 15) + 'px';
      });

      cy.on('mouseout', 'node', function() {
        tooltip.style.display = 'none';
      });

      cy.on('tap', 'node', function(evt) {
        const node = evt.target;
        cy.elements().removeClass('highlighted dimmed');
        const lineage = node.predecessors().add(node.successors()).add(node);
        lineage.addClass('highlighted');
        cy.elements().not(lineage).addClass('dimmed');
      });

      cy.on('tap', function(evt) {
        if (evt.target === cy) {
          cy.elements().removeClass('highlighted dimmed');
        }
      });
    })();
  </script>
</body>
</html>`
