package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/orca/internal/runtime"
	"github.com/aretw0/orca/pkg/domain"
)

// Overlay highlights a session on the flow chart.
type Overlay struct {
	Visited []domain.Screen
	Current domain.Screen
	// Terminated marks a cancelled session.
	Terminated bool
}

// OverlayFor builds the overlay of a stored session.
func OverlayFor(state *domain.State) *Overlay {
	if state == nil {
		return nil
	}
	return &Overlay{
		Visited:    state.History,
		Current:    state.Screen,
		Terminated: state.Status == domain.StatusTerminated,
	}
}

type edge struct {
	from, to domain.Screen
	label    string
	dotted   bool
}

const cancelledNode = "cancelled"

var flowEdges = []edge{
	{domain.ScreenWelcome, domain.ScreenProduct, "Enter", false},
	{domain.ScreenWelcome, domain.ScreenSpecs, "arama", true},
	{domain.ScreenProduct, domain.ScreenSpecs, "kategori", false},
	{domain.ScreenSpecs, domain.ScreenContact, "", false},
	{domain.ScreenContact, domain.ScreenConfirm, "", false},
	{domain.ScreenConfirm, domain.ScreenSuccess, "kanal", false},
	{domain.ScreenConfirm, domain.ScreenContact, "geri", true},
	{domain.ScreenSuccess, domain.ScreenWelcome, "yeni", true},
}

// GenerateMermaid produces a Mermaid flowchart of the order flow. Screens
// that ask questions are drawn as parallelograms annotated with their
// question count, the start and end screens as circles.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, screen := range domain.Screens {
		opener, closer := "[", "]"
		label := screen.Label()
		switch screen {
		case domain.ScreenWelcome:
			opener, closer = "((", "))"
		case domain.ScreenSuccess:
			opener, closer = "(((", ")))"
		case domain.ScreenConfirm:
			opener, closer = "[[", "]]"
		default:
			if n := len(runtime.Fields(screen)); n > 0 {
				opener, closer = "[/", "/]"
				label = fmt.Sprintf("%s <br/> %d soru", label, n)
			}
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", screen, opener, escape(label), closer)
	}
	fmt.Fprintf(&sb, "    %s{{\"İptal\"}}\n", cancelledNode)

	for _, e := range flowEdges {
		arrow := "-->"
		switch {
		case e.label != "" && e.dotted:
			arrow = fmt.Sprintf("-. \"%s\" .->", escape(e.label))
		case e.label != "":
			arrow = fmt.Sprintf("-- \"%s\" -->", escape(e.label))
		case e.dotted:
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", e.from, arrow, e.to)
	}
	for _, screen := range domain.Screens[:len(domain.Screens)-1] {
		fmt.Fprintf(&sb, "    %s -. \"iptal\" .-> %s\n", screen, cancelledNode)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#ecfccb,stroke:#4d7c0f,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#fde68a,stroke:#b45309,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.Screen]bool)
		for _, s := range overlay.Visited {
			if !seen[s] && s != "" {
				seen[s] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", s)
			}
		}
		switch {
		case overlay.Terminated:
			fmt.Fprintf(&sb, "    class %s current;\n", cancelledNode)
		case overlay.Current != "":
			fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
