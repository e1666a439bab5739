package graph

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate = template.Must(template.New("graph").Parse(htmlTemplate))

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", "grid" or "concentric"
	Title  string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{Layout: "force", Title: "Network"}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid", "concentric"}

// GenerateHTML renders a self-contained HTML page that draws the graph with
// Cytoscape.js.
func GenerateHTML(d *GraphData, opts HTMLOptions) (string, error) {
	if d == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}
	if d.IsEmpty() {
		return generateEmptyHTML(opts.Title), nil
	}

	graphJSON, err := d.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:      opts.Title,
		GraphJSON:  template.JS(graphJSON),
		Layout:     layoutToCytoscape(opts.Layout),
		Directed:   d.Directed,
		Categories: d.Categories(),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering graph page: %w", err)
	}
	return buf.String(), nil
}

func validateLayout(layout string) error {
	switch layout {
	case "", "force", "circle", "grid", "concentric":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be force, circle, grid, or concentric", layout)
	}
}

type templateData struct {
	Title      string
	GraphJSON  template.JS
	Layout     string
	Directed   bool
	Categories []string
}

// layoutToCytoscape converts user-facing layout names to Cytoscape.js names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle", "grid", "concentric":
		return layout
	default:
		return "cose"
	}
}

func generateEmptyHTML(title string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>` + template.HTMLEscapeString(title) + ` - Empty</title>
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
    .empty-state code { background: #e0e0e0; padding: 2px 6px; border-radius: 3px; }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No graph data</h2>
    <p>The selected network has no vertices.</p>
    <p>Import records with <code>art import</code> and link them with <code>art resolve</code></p>
  </div>
</body>
</html>`
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
      background: #f5f5f5;
    }
    #cy { width: 100%; height: 100vh; background: white; }
    #legend {
      position: absolute; top: 10px; left: 10px;
      background: white; border: 1px solid #ccc; border-radius: 4px;
      padding: 6px 10px; font-size: 12px;
    }
    #tooltip {
      position: absolute; display: none;
      background: white; border: 1px solid #ccc; border-radius: 4px;
      padding: 8px 12px; box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 320px; font-size: 13px; z-index: 1000; pointer-events: none;
    }
    #tooltip .type { font-size: 10px; text-transform: uppercase; color: #888; margin-bottom: 4px; }
    #tooltip .label { font-weight: bold; margin-bottom: 4px; }
    #tooltip .detail { color: #555; margin: 2px 0; }
  </style>
</head>
<body>
  <div id="cy"></div>
  <div id="legend">{{range .Categories}}<div>{{.}}</div>{{end}}</div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const layout = "{{.Layout}}";
      const directed = {{.Directed}};

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: [
          {
            selector: 'node',
            style: {
              'label': 'data(label)',
              'color': '#333',
              'font-size': '10px',
              'text-valign': 'bottom',
              'text-margin-y': '5px',
              'width': 'mapData(degree, 0, 20, 20, 50)',
              'height': 'mapData(degree, 0, 20, 20, 50)',
              'background-color': '#95A5A6'
            }
          },
          { selector: 'node[category="work"]', style: { 'background-color': '#4A90D9' } },
          { selector: 'node[category="author"]', style: { 'background-color': '#E8923A', 'shape': 'diamond' } },
          { selector: 'node[category="funder"]', style: { 'background-color': '#27AE60', 'shape': 'hexagon' } },
          { selector: 'node[category="affiliation"]', style: { 'background-color': '#9B59B6', 'shape': 'rectangle' } },
          {
            selector: 'edge',
            style: {
              'line-color': '#BDC3C7',
              'target-arrow-color': '#BDC3C7',
              'target-arrow-shape': directed ? 'triangle' : 'none',
              'curve-style': 'bezier',
              'width': 'mapData(weight, 1, 10, 1, 8)'
            }
          },
          { selector: 'node.highlighted', style: { 'border-width': 3, 'border-color': '#ff6b6b' } },
          { selector: 'node.dimmed', style: { 'opacity': 0.3 } },
          { selector: 'edge.dimmed', style: { 'opacity': 0.2 } }
        ],
        layout: {
          name: layout,
          animate: false,
          nodeRepulsion: 8000,
          idealEdgeLength: 100,
          edgeElasticity: 100
        }
      });

      const tooltip = document.getElementById('tooltip');

      function showTooltip(evt, content) {
        tooltip.innerHTML = content;
        tooltip.style.display = 'block';
        const pos = evt.renderedPosition || evt.position;
        tooltip.style.left = (pos.x + 15) + 'px';
        tooltip.style.top = (pos.y + 15) + 'px';
      }

      function hideTooltip() {
        tooltip.style.display = 'none';
      }

      function escapeHtml(str) {
        if (str === undefined || str === null) return '';
        return String(str).replace(/&/g, '&amp;')
                          .replace(/</g, '&lt;')
                          .replace(/>/g, '&gt;')
                          .replace(/"/g, '&quot;');
      }

      function getNodeTooltip(node) {
        const data = node.data();
        let html = '<div class="type">' + escapeHtml(data.category) + '</div>';
        html += '<div class="label">' + escapeHtml(data.label) + '</div>';
        html += '<div class="detail">' + escapeHtml(data.id) + '</div>';
        const attrs = data.attrs || {};
        Object.keys(attrs).forEach(function(k) {
          html += '<div class="detail">' + escapeHtml(k) + ': ' + escapeHtml(attrs[k]) + '</div>';
        });
        html += '<div class="detail">Degree: ' + data.degree + '</div>';
        return html;
      }

      function getEdgeTooltip(edge) {
        const data = edge.data();
        let html = '<div class="type">' + escapeHtml(data.type) + '</div>';
        html += '<div class="label">' + escapeHtml(data.source) + (directed ? ' → ' : ' — ') + escapeHtml(data.target) + '</div>';
        html += '<div class="detail">Weight: ' + data.weight + '</div>';
        return html;
      }

      cy.on('mouseover', 'node', function(evt) { showTooltip(evt, getNodeTooltip(evt.target)); });
      cy.on('mouseout', 'node', hideTooltip);
      cy.on('mouseover', 'edge', function(evt) { showTooltip(evt, getEdgeTooltip(evt.target)); });
      cy.on('mouseout', 'edge', hideTooltip);

      cy.on('tap', 'node', function(evt) {
        const node = evt.target;
        cy.elements().removeClass('highlighted dimmed');
        const neighborhood = node.neighborhood().add(node);
        neighborhood.addClass('highlighted');
        cy.elements().not(neighborhood).addClass('dimmed');
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
