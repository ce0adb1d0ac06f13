package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/reviewcrew/internal/crew"
)

var agentsCrewFile string

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the crew's agents and task wiring",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := crew.Default()
		if agentsCrewFile != "" {
			loaded, err := crew.LoadFile(agentsCrewFile)
			if err != nil {
				return err
			}
			c = loaded
		}

		fmt.Printf("Crew: %s\n\n", color.CyanString(c.Name))
		for _, w := range c.Workers {
			fmt.Printf("%s\n    %s\n", color.New(color.Bold).Sprint(w.Role), w.Goal)
		}

		fmt.Printf("\nTasks:\n")
		for _, task := range c.Tasks {
			marker := " "
			if task.ID == c.TerminalID {
				marker = color.GreenString("*")
			}
			deps := "-"
			if len(task.DependsOn) > 0 {
				deps = strings.Join(task.DependsOn, ", ")
			}
			fmt.Printf("  %s %-16s %-28s depends on: %s\n", marker, task.ID, task.Worker, deps)
		}
		fmt.Printf("\n%s terminal task\n", color.GreenString("*"))
		return nil
	},
}

func init() {
	agentsCmd.Flags().StringVar(&agentsCrewFile, "crew", "", "Custom crew definition (YAML file)")
}
