package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"crewplan/internal/capacity"
	"crewplan/internal/config"
	"crewplan/internal/db"
	"crewplan/internal/domain"
	"crewplan/internal/engine"
	"crewplan/internal/migrate"
	"crewplan/internal/repo"
	"crewplan/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "crew",
	Short: "Crewplan CLI",
	Long: `Crewplan tracks who is working on what and how much room they have left.
- Workspace: a .crewplan directory holding the database, plus a crewplan.yml with team policy.
- Members: people with a weekly working-hour budget.
- Projects: things members get engaged on.
- Engagements: weekly hour allocations of a member to a project; creating one is
  validated against the member's remaining capacity unless --force is given.
- Time off: vacation/leave periods that go through pending -> approved/rejected
  and reduce availability once approved.
- Availability: point-in-time or per-period utilization figures, per member or
  for the whole team.
- Event log: diary of changes, view with 'crew log tail'.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("CREWPLAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier")
	rootCmd.PersistentFlags().Bool("force", false, "commit even when validation fails")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
	_ = viper.BindPFlag("force", rootCmd.PersistentFlags().Lookup("force"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(memberCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(engagementCmd())
	rootCmd.AddCommand(timeOffCmd())
	rootCmd.AddCommand(availabilityCmd())
	rootCmd.AddCommand(apiKeyCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfgPath := config.Path(workspace)
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				if err := os.WriteFile(cfgPath, []byte(config.GenerateDefault()), 0o644); err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", cfgPath)
			}
			fmt.Printf("Workspace ready: database at %s\n", db.Path(workspace))
			return nil
		},
	}
	return cmd
}

func memberCmd() *cobra.Command {
	m := &cobra.Command{Use: "member", Short: "Manage team members"}
	m.AddCommand(memberAddCmd())
	m.AddCommand(memberListCmd())
	m.AddCommand(memberShowCmd())
	m.AddCommand(memberUpdateCmd())
	return m
}

func memberAddCmd() *cobra.Command {
	var name, email, joinedAt string
	var hours float64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				m, err := e.CreateMember(ctx, engine.MemberCreateOptions{
					Name:                name,
					Email:               email,
					WorkingHoursPerWeek: hours,
					JoinedAt:            joinedAt,
					ActorID:             viper.GetString("actor-id"),
				})
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "member name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().Float64Var(&hours, "hours", 0, "working hours per week (default from config)")
	cmd.Flags().StringVar(&joinedAt, "joined", "", "join date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func memberListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				items, err := r.ListMembers(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Email", "Hours/Week"})
				for _, m := range items {
					tw.AppendRow(table.Row{m.ID, m.Name, m.Email, capacity.FormatHours(m.WorkingHoursPerWeek)})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func memberShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				m, err := r.GetMember(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	return cmd
}

func memberUpdateCmd() *cobra.Command {
	var name, email string
	var hours float64
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				opts := engine.MemberUpdateOptions{ID: args[0], ActorID: viper.GetString("actor-id")}
				if cmd.Flags().Changed("name") {
					opts.Name = &name
				}
				if cmd.Flags().Changed("email") {
					opts.Email = &email
				}
				if cmd.Flags().Changed("hours") {
					opts.WorkingHoursPerWeek = &hours
				}
				m, err := e.UpdateMember(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "member name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().Float64Var(&hours, "hours", 0, "working hours per week")
	return cmd
}

func projectCmd() *cobra.Command {
	p := &cobra.Command{Use: "project", Short: "Manage projects"}
	p.AddCommand(projectCreateCmd())
	p.AddCommand(projectListCmd())
	p.AddCommand(projectShowCmd())
	return p
}

func projectCreateCmd() *cobra.Command {
	var name, desc string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.CreateProject(ctx, "", name, desc, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&desc, "description", "", "description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func projectListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				items, err := r.ListProjects(ctx)
				if err != nil {
					return err
				}
				return printJSONOrTable(items)
			})
		},
	}
	return cmd
}

func projectShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project with its engagements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				p, err := r.GetProject(ctx, args[0])
				if err != nil {
					return err
				}
				engs, err := r.ListEngagementsByProject(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]any{"project": p, "engagements": engs})
			})
		},
	}
	return cmd
}

func engagementCmd() *cobra.Command {
	e := &cobra.Command{Use: "engagement", Short: "Manage engagements"}
	e.AddCommand(engagementAddCmd())
	e.AddCommand(engagementUpdateCmd())
	e.AddCommand(engagementEndCmd())
	e.AddCommand(engagementListCmd())
	e.AddCommand(engagementValidateCmd())
	return e
}

func printVerdictWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

func engagementAddCmd() *cobra.Command {
	var memberID, projectID, start, end, role string
	var hours float64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Allocate a member to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				eng, verdict, err := e.CreateEngagement(ctx, engine.EngagementCreateOptions{
					MemberID:     memberID,
					ProjectID:    projectID,
					HoursPerWeek: hours,
					StartDate:    start,
					EndDate:      end,
					Role:         role,
					ActorID:      viper.GetString("actor-id"),
					Force:        viper.GetBool("force"),
				})
				if err != nil {
					return rejectionError(err)
				}
				printVerdictWarnings(verdict.Warnings)
				return printJSONOrTable(eng)
			})
		},
	}
	cmd.Flags().StringVar(&memberID, "member", "", "member id")
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().Float64Var(&hours, "hours", 0, "hours per week")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&role, "role", "", "role on the project")
	_ = cmd.MarkFlagRequired("member")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("hours")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func engagementUpdateCmd() *cobra.Command {
	var start, end, role string
	var hours float64
	var clearEnd bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an engagement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				opts := engine.EngagementUpdateOptions{
					ID:           args[0],
					ClearEndDate: clearEnd,
					ActorID:      viper.GetString("actor-id"),
					Force:        viper.GetBool("force"),
				}
				if cmd.Flags().Changed("hours") {
					opts.HoursPerWeek = &hours
				}
				if cmd.Flags().Changed("start") {
					opts.StartDate = &start
				}
				if cmd.Flags().Changed("end") {
					opts.EndDate = &end
				}
				if cmd.Flags().Changed("role") {
					opts.Role = &role
				}
				eng, verdict, err := e.UpdateEngagement(ctx, opts)
				if err != nil {
					return rejectionError(err)
				}
				printVerdictWarnings(verdict.Warnings)
				return printJSONOrTable(eng)
			})
		},
	}
	cmd.Flags().Float64Var(&hours, "hours", 0, "hours per week")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearEnd, "clear-end", false, "make the engagement open-ended")
	cmd.Flags().StringVar(&role, "role", "", "role on the project")
	return cmd
}

func engagementEndCmd() *cobra.Command {
	var end string
	cmd := &cobra.Command{
		Use:   "end <id>",
		Short: "End an engagement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				eng, err := e.EndEngagement(ctx, args[0], end, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrTable(eng)
			})
		},
	}
	cmd.Flags().StringVar(&end, "date", "", "end date (defaults to today)")
	return cmd
}

func engagementListCmd() *cobra.Command {
	var memberID, projectID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List engagements by member or project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (memberID == "") == (projectID == "") {
				return fmt.Errorf("exactly one of --member or --project is required")
			}
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				var (
					items []domain.Engagement
					err   error
				)
				if memberID != "" {
					items, err = r.ListEngagementsByMember(ctx, memberID)
				} else {
					items, err = r.ListEngagementsByProject(ctx, projectID)
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Member", "Project", "Hours/Week", "Active", "Start", "End"})
				for _, eng := range items {
					end := ""
					if eng.EndDate != nil {
						end = *eng.EndDate
					}
					tw.AppendRow(table.Row{eng.ID, eng.MemberID, eng.ProjectID, capacity.FormatHours(eng.HoursPerWeek), eng.IsActive, eng.StartDate, end})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&memberID, "member", "", "member id")
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	return cmd
}

func engagementValidateCmd() *cobra.Command {
	var memberID, projectID, start, end, excludeID string
	var hours float64
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an engagement without writing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				candidate := domain.Engagement{
					MemberID:     memberID,
					ProjectID:    projectID,
					HoursPerWeek: hours,
					IsActive:     true,
					StartDate:    start,
				}
				if end != "" {
					candidate.EndDate = &end
				}
				verdict, err := e.ValidateEngagementCandidate(ctx, memberID, candidate, excludeID)
				if err != nil {
					return err
				}
				return printJSONOrTable(verdict)
			})
		},
	}
	cmd.Flags().StringVar(&memberID, "member", "", "member id")
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().Float64Var(&hours, "hours", 0, "hours per week")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&excludeID, "exclude", "", "engagement id being edited")
	_ = cmd.MarkFlagRequired("member")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("hours")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func timeOffCmd() *cobra.Command {
	t := &cobra.Command{Use: "timeoff", Short: "Manage time off"}
	t.AddCommand(timeOffRequestCmd())
	t.AddCommand(timeOffStatusCmd("approve", "approved", "Approve a pending request"))
	t.AddCommand(timeOffStatusCmd("reject", "rejected", "Reject a pending request"))
	t.AddCommand(timeOffListCmd())
	return t
}

func timeOffRequestCmd() *cobra.Command {
	var memberID, toType, start, end, desc string
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Request time off",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				entry, verdict, err := e.RequestTimeOff(ctx, engine.TimeOffRequestOptions{
					MemberID:    memberID,
					Type:        toType,
					StartDate:   start,
					EndDate:     end,
					Description: desc,
					ActorID:     viper.GetString("actor-id"),
					Force:       viper.GetBool("force"),
				})
				if err != nil {
					return rejectionError(err)
				}
				printVerdictWarnings(verdict.Warnings)
				return printJSONOrTable(entry)
			})
		},
	}
	cmd.Flags().StringVar(&memberID, "member", "", "member id")
	cmd.Flags().StringVar(&toType, "type", "vacation", "vacation, parental_leave, sick_leave, paid_time_off, unpaid_time_off, other")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&desc, "description", "", "description")
	_ = cmd.MarkFlagRequired("member")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func timeOffStatusCmd(use, status, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				entry, err := e.SetTimeOffStatus(ctx, args[0], status, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrTable(entry)
			})
		},
	}
}

func timeOffListCmd() *cobra.Command {
	var memberID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a member's time off",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				items, err := r.ListTimeOffByMember(ctx, memberID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Type", "Start", "End", "Status"})
				for _, e := range items {
					tw.AppendRow(table.Row{e.ID, e.Type, e.StartDate, e.EndDate, e.Status})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&memberID, "member", "", "member id")
	_ = cmd.MarkFlagRequired("member")
	return cmd
}

func availabilityCmd() *cobra.Command {
	a := &cobra.Command{Use: "availability", Short: "Availability and utilization"}
	a.AddCommand(availabilityMemberCmd())
	a.AddCommand(availabilityPeriodCmd())
	a.AddCommand(availabilityTeamCmd())
	return a
}

func availabilityMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member <id>",
		Short: "Availability snapshot for one member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				res, err := e.MemberAvailability(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				fmt.Printf("%s: engaged %s, available %s, utilization %s (%s)\n",
					res.Member.Name,
					capacity.FormatHours(res.Availability.EngagedHours),
					capacity.FormatHours(res.Availability.AvailableHours),
					capacity.FormatUtilization(res.Availability.UtilizationPct),
					res.Status.Label)
				if res.Availability.IsCurrentlyOnTimeOff {
					fmt.Println("currently on time off")
				}
				for _, to := range res.Availability.UpcomingTimeOff {
					fmt.Printf("upcoming %s: %s to %s\n", to.Type,
						to.StartDate.Format("2006-01-02"), to.EndDate.Format("2006-01-02"))
				}
				return nil
			})
		},
	}
	return cmd
}

func availabilityPeriodCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "period <member-id>",
		Short: "Availability over a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				sum, err := e.MemberPeriodAvailability(ctx, args[0], start, end)
				if err != nil {
					return err
				}
				return printJSONOrTable(sum)
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD, inclusive)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func availabilityTeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Availability for the whole team",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				team, err := e.TeamAvailability(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(team)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Member", "Engaged", "Available", "Utilization", "Status", "Time Off"})
				for _, row := range team {
					note := ""
					if row.Availability.IsCurrentlyOnTimeOff {
						note = "away"
					} else if len(row.Availability.UpcomingTimeOff) > 0 {
						note = "upcoming"
					}
					tw.AppendRow(table.Row{
						row.Member.Name,
						capacity.FormatHours(row.Availability.EngagedHours),
						capacity.FormatHours(row.Availability.AvailableHours),
						capacity.FormatUtilization(row.Availability.UtilizationPct),
						row.Status.Label,
						note,
					})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func apiKeyCmd() *cobra.Command {
	k := &cobra.Command{Use: "apikey", Short: "Manage API keys"}
	k.AddCommand(apiKeyCreateCmd())
	k.AddCommand(apiKeyListCmd())
	k.AddCommand(apiKeyDeleteCmd())
	return k
}

func apiKeyCreateCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key for the current actor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				raw := uuid.New().String() + uuid.New().String()
				key := domain.APIKey{
					ID:        uuid.New().String(),
					ActorID:   viper.GetString("actor-id"),
					Name:      name,
					KeyHash:   repo.HashAPIKey(raw),
					CreatedAt: time.Now().UTC().Format(time.RFC3339),
				}
				if err := r.InsertAPIKey(ctx, nil, key); err != nil {
					return err
				}
				fmt.Printf("API key (store it now, it is not saved): %s\n", raw)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "key label")
	return cmd
}

func apiKeyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				keys, err := r.ListAPIKeys(ctx, "")
				if err != nil {
					return err
				}
				return printJSONOrTable(keys)
			})
		},
	}
	return cmd
}

func apiKeyDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				return r.DeleteAPIKey(ctx, args[0])
			})
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	l := &cobra.Command{Use: "log", Short: "Event log"}
	l.AddCommand(logTailCmd())
	return l
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind, entityID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				events, err := r.LatestEvents(ctx, n, evtType, entityKind, entityID)
				if err != nil {
					return err
				}
				return printJSONOrTable(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity id")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	var noAuth bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := config.LoadOptional(workspace)
			if err != nil {
				return err
			}
			e := engine.New(conn, cfg)
			authCfg := server.AuthConfig{
				JWTSecret: os.Getenv("CREWPLAN_JWT_SECRET"),
				Disabled:  noAuth,
			}
			if !noAuth && authCfg.JWTSecret == "" {
				return fmt.Errorf("CREWPLAN_JWT_SECRET is required unless --no-auth is set")
			}
			handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Crewplan API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "disable authentication (local use)")
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		return err
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return err
	}
	e := engine.New(conn, cfg)
	return fn(ctx, e)
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		return err
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

// rejectionError expands validation rejections so the user sees every error.
func rejectionError(err error) error {
	var engRejected *engine.EngagementRejectedError
	if errors.As(err, &engRejected) {
		for _, msg := range engRejected.Result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
		printVerdictWarnings(engRejected.Result.Warnings)
		return fmt.Errorf("validation failed (use --force to commit anyway)")
	}
	var toRejected *engine.TimeOffRejectedError
	if errors.As(err, &toRejected) {
		for _, msg := range toRejected.Result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
		printVerdictWarnings(toRejected.Result.Warnings)
		return fmt.Errorf("validation failed (use --force to commit anyway)")
	}
	return err
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
