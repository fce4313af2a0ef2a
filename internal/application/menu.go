// Package application is the interactive terminal menu.
package application

import (
	"fmt"

	"github.com/JonMunkholm/gradebook/internal/report"
	tea "github.com/charmbracelet/bubbletea"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

// Prompt is one value asked for before an action runs. Default is used
// when the answer is empty.
type Prompt struct {
	Label   string
	Default string
}

type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func() tea.Cmd

	// Prompts are asked in order, then Submit receives the answers.
	Prompts []Prompt
	Submit  func(values []string) tea.Cmd
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == "Back" {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

func buildMenuTree(m *Model) *Menu {
	root := &Menu{
		Title: "Student Results",
		Items: []MenuItem{
			{
				Label:   "Load data",
				Prompts: []Prompt{{Label: "File name", Default: m.cfg.Import.DefaultFile}},
				Submit:  func(v []string) tea.Cmd { return m.importFile(v[0]) },
			},
			{Label: "View all", Action: m.viewAll},
			{
				Label:   "View by index",
				Prompts: []Prompt{{Label: "Index number"}},
				Submit:  func(v []string) tea.Cmd { return m.viewOne(v[0]) },
			},
			{
				Label:   "Update score",
				Prompts: []Prompt{{Label: "Index number"}, {Label: "New score"}},
				Submit:  func(v []string) tea.Cmd { return m.updateScore(v[0], v[1]) },
			},
			{Label: "Export report ->", Submenu: loadReports(m)},
			{Label: "Statistics", Action: m.statistics},
			{Label: "Reset data ->", Submenu: loadReset(m)},
			{Label: "Exit", Action: func() tea.Cmd { return tea.Quit }},
		},
	}

	linkParents(root, nil)

	return root
}

/* ----------------------------------------
	LOAD MENUS
---------------------------------------- */

func loadReports(m *Model) *Menu {
	menu := &Menu{Title: "Export report"}
	for _, kind := range report.Kinds() {
		kind := kind
		def := m.cfg.Report.DefaultFile
		if kind != report.KindSummary {
			def = fmt.Sprintf("%s_report%s", kind, kind.Extension())
		}
		menu.Items = append(menu.Items, MenuItem{
			Label:   fmt.Sprintf("%s report", kind),
			Prompts: []Prompt{{Label: "Save as", Default: def}},
			Submit:  func(v []string) tea.Cmd { return m.exportReport(kind, v[0]) },
		})
	}
	menu.Items = append(menu.Items, MenuItem{Label: "Back"})
	return menu
}

func loadReset(m *Model) *Menu {
	return &Menu{
		Title: "Reset data",
		Items: []MenuItem{
			{Label: "Delete every record", Action: m.reset},
			{Label: "Back"},
		},
	}
}
