package drawer

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/modelseq/go-modelseq/pkg/sequence"
)

const maxRGB = 240

// DOTDrawer draws the connectivity graph of one sequence.
type DOTDrawer struct {
	name  string
	graph graph.Graph[string, string]
	order []string
}

// FromSpec builds a drawer for the given sequence. The spec is expected to
// be validated already; duplicate ids fail here the same way they fail
// validation.
func FromSpec(spec *sequence.Spec) (*DOTDrawer, error) {
	d := &DOTDrawer{
		name:  spec.Name,
		graph: graph.New(graph.StringHash, graph.Directed()),
	}

	for i := range spec.Steps {
		step := &spec.Steps[i]
		err := d.graph.AddVertex(step.ID, graph.VertexAttribute("xlabel", step.Name))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add vertex %s", step.ID)
		}
		d.order = append(d.order, step.ID)
	}

	counts := make([]int, 0, len(spec.Steps))
	maxChained := 0
	for i := 0; i < len(spec.Steps)-1; i++ {
		chained := sequence.ChainedFields(&spec.Steps[i], &spec.Steps[i+1])
		counts = append(counts, len(chained))
		if len(chained) > maxChained {
			maxChained = len(chained)
		}
	}

	for i := 0; i < len(spec.Steps)-1; i++ {
		current, next := &spec.Steps[i], &spec.Steps[i+1]
		chained := sequence.ChainedFields(current, next)

		colour, err := gradeColour(counts[i], maxChained)
		if err != nil {
			return nil, err
		}

		err = d.graph.AddEdge(current.ID, next.ID,
			graph.EdgeAttribute("label", strings.Join(chained, ", ")),
			graph.EdgeAttribute("fontcolor", "blue"),
			graph.EdgeAttribute("color", colour),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add edge from %s to %s", current.ID, next.ID)
		}
	}

	return d, nil
}

// gradeColour maps a chained-field count onto a blue-to-red gradient.
func gradeColour(count, maxCount int) (string, error) {
	fraction := 1.0
	if maxCount > 0 {
		fraction = float64(count) / float64(maxCount)
	}

	red := maxRGB * fraction
	blue := -maxRGB*fraction + maxRGB

	colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return colour.ToHEX().String(), nil
}

//nolint:lll //this is a template
const dotTemplate = `strict digraph {
	rankdir="LR";
	label="{{.Name}}";
	{{range $s := .Statements}}
	"{{.Source}}" {{if .Target}}-> "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	Name       string
	Statements []statement
}

type statement struct {
	Source         string
	Target         string
	HTMLAttributes map[string]string
	EdgeAttributes map[string]string
}

// Draw writes the DOT rendition of the sequence graph.
func (d *DOTDrawer) Draw(w io.Writer) error {
	desc, err := d.generateDOT()
	if err != nil {
		return errors.Wrap(err, "unable to generate DOT description")
	}

	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return errors.Wrap(tpl.Execute(w, desc), "unable to execute template")
}

func (d *DOTDrawer) generateDOT() (description, error) {
	desc := description{
		Name:       d.name,
		Statements: make([]statement, 0),
	}

	adjacencyMap, err := d.graph.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for _, vertex := range d.order {
		_, sourceProperties, err := d.graph.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)
		if xlabel, ok := sourceProperties.Attributes["xlabel"]; ok && xlabel != "" {
			htmlAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)
		}

		desc.Statements = append(desc.Statements, statement{
			Source:         vertex,
			HTMLAttributes: htmlAttributes,
		})

		adjacencies := adjacencyMap[vertex]
		targets := make([]string, 0, len(adjacencies))
		for adjacency := range adjacencies {
			targets = append(targets, adjacency)
		}
		sort.Strings(targets)

		for _, adjacency := range targets {
			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeAttributes: adjacencies[adjacency].Properties.Attributes,
			})
		}
	}

	return desc, nil
}

var _ Drawer = (*DOTDrawer)(nil)
