package martech

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Version information
const (
	Version = "1.0.0"
	Name    = "MarTech Analysis Agent"
	GitHub  = "https://github.com/faisalkhan8/MarTech-Analysis-Agent"
)

var asciiLogo = `
   __  ___     ______        __
  /  |/  /__ _/_  __/__ ____/ /
 / /|_/ / _ ` + "`" + `/ / / / -_) __/ _ \
/_/  /_/\_,_/ /_/  \__/\__/_//_/
`

func printVersion() {
	logoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("63")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	linkStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Underline(true)

	fmt.Println(logoStyle.Render(asciiLogo))
	fmt.Println()

	fmt.Println(labelStyle.Render(Name))
	fmt.Printf("%s %s\n", labelStyle.Render("Version:"), valueStyle.Render(Version))
	fmt.Printf("%s %s\n", labelStyle.Render("GitHub:"), linkStyle.Render(GitHub))
	fmt.Println()
}
