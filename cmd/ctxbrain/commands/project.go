// ABOUTME: CLI command to register and list project scopes
// ABOUTME: Technologies are detected from marker files when not given
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ctxforge/ctxbrain/internal/models"
	"github.com/joho/godotenv"
)

var (
	projectID    string
	projectRoot  string
	projectTechs []string
)

// NewProjectCmd creates the project command with register and list subcommands
func NewProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage project scopes",
		Long: `Manage the project scopes that context items belong to.

Items can only be stored into registered projects. Registering with a
root path and no explicit technologies scans the path for marker files
(go.mod, package.json, Cargo.toml, ...) to detect the stack.

Examples:
  ctxbrain project register "billing-service" --root ~/src/billing
  ctxbrain project register "data-pipeline" --tech python --tech airflow
  ctxbrain project list`,
	}

	registerCmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a project scope",
		Args:  cobra.ExactArgs(1),
		RunE:  runProjectRegister,
	}
	registerCmd.Flags().StringVar(&projectID, "id", "", "Project ID (generated when empty)")
	registerCmd.Flags().StringVar(&projectRoot, "root", "", "Project root path for technology detection")
	registerCmd.Flags().StringSliceVar(&projectTechs, "tech", []string{}, "Technology (can be repeated, skips detection)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered projects",
		RunE:  runProjectList,
	}

	cmd.AddCommand(registerCmd)
	cmd.AddCommand(listCmd)

	return cmd
}

func runProjectRegister(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	project, err := engine.RegisterProject(cmd.Context(), &models.Project{
		ID:           projectID,
		Name:         args[0],
		RootPath:     projectRoot,
		Technologies: projectTechs,
	})
	if err != nil {
		return fmt.Errorf("registering project: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Registered %s as %s\n", project.Name, project.ID)
		if len(project.Technologies) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  technologies: %s\n", strings.Join(project.Technologies, ", "))
		}
	}

	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	projects, err := engine.Projects(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}

	if len(projects) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No projects registered\n")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(projects, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tTECHNOLOGIES\tREGISTERED\n")
	fmt.Fprintf(w, "--\t----\t------------\t----------\n")

	for _, project := range projects {
		techs := "(none)"
		if len(project.Technologies) > 0 {
			techs = strings.Join(project.Technologies, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			project.ID,
			truncate(project.Name, 30),
			truncate(techs, 40),
			formatTime(project.CreatedAt))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d project(s)\n", len(projects))
	}

	return nil
}
