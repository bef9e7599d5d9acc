package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spat/internal/identity"
	"spat/internal/overrides"
	"spat/internal/store"
)

var (
	statesFormat string
	setReason    string
	setChangedBy string
	historyLimit int
)

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "Inspect and change package migration states",
	Long: `Manage the migration state of tracked packages.

Every package carries one state (tracking, in_progress, android_supported,
archived, irrelevant, blocked, dependency, unknown). State changes are
recorded with a reason and show up in the package's history.`,
}

var statesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List states and package counts",
	Run:   runStatesList,
}

var statesSetCmd = &cobra.Command{
	Use:   "set <package> <state>",
	Short: "Move a package to a new state",
	Long: `Move a package to a new migration state.

Examples:
  spat states set apple/swift-nio in_progress --reason "port started"
  spat states set vapor/vapor android_supported --by ci-bot`,
	Args: cobra.ExactArgs(2),
	Run:  runStatesSet,
}

var statesApplyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Apply a YAML file of state overrides",
	Long: `Apply curated state updates from a YAML file.

The file lists updates as:

  updates:
    - package: apple/swift-nio
      state: in_progress
      reason: port started
      changed_by: maintainer

Failures are reported per update; the rest of the file still applies.`,
	Args: cobra.ExactArgs(1),
	Run:  runStatesApply,
}

var statesHistoryCmd = &cobra.Command{
	Use:   "history <package>",
	Short: "Show a package's state transitions",
	Args:  cobra.ExactArgs(1),
	Run:   runStatesHistory,
}

func init() {
	statesSetCmd.Flags().StringVar(&setReason, "reason", "", "Reason recorded with the transition")
	statesSetCmd.Flags().StringVar(&setChangedBy, "by", "", "Who made the change")
	statesHistoryCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum transitions to show")

	statesCmd.PersistentFlags().StringVar(&statesFormat, "format", "human", "Output format (json, human)")

	statesCmd.AddCommand(statesListCmd)
	statesCmd.AddCommand(statesSetCmd)
	statesCmd.AddCommand(statesApplyCmd)
	statesCmd.AddCommand(statesHistoryCmd)
	rootCmd.AddCommand(statesCmd)
}

// StatesResponseCLI lists the known states for CLI output
type StatesResponseCLI struct {
	States []StateInfoCLI `json:"states"`
}

// StateInfoCLI describes one migration state
type StateInfoCLI struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// HistoryResponseCLI carries a package's transitions for CLI output
type HistoryResponseCLI struct {
	URL         string                  `json:"url"`
	Transitions []store.StateTransition `json:"transitions"`
}

func runStatesList(cmd *cobra.Command, args []string) {
	logger := newLogger(statesFormat)
	s := mustGetStore(resolveDataRoot(), logger)

	counts, err := s.CountByState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error counting states: %v\n", err)
		os.Exit(1)
	}

	response := &StatesResponseCLI{}
	for _, state := range store.AllStates() {
		response.States = append(response.States, StateInfoCLI{
			Name:        string(state),
			Description: store.StateDescriptions[state],
			Count:       counts[state],
		})
	}

	output, err := FormatResponse(response, OutputFormat(statesFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

func runStatesSet(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(statesFormat)
	s := mustGetStore(resolveDataRoot(), logger)

	record := mustFindRecord(s, args[0])
	changed, err := s.TransitionState(record.URL, store.PackageState(args[1]), setReason, setChangedBy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error changing state: %v\n", err)
		os.Exit(1)
	}

	if changed {
		fmt.Printf("%s -> %s\n", record.PackageID(), args[1])
	} else {
		fmt.Printf("%s already in state %s\n", record.PackageID(), args[1])
	}

	logger.Debug("State change completed", map[string]interface{}{
		"package":  record.PackageID().String(),
		"changed":  changed,
		"duration": time.Since(start).Milliseconds(),
	})
}

func runStatesApply(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(statesFormat)
	s := mustGetStore(resolveDataRoot(), logger)

	file, err := overrides.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading overrides: %v\n", err)
		os.Exit(1)
	}

	result := overrides.Apply(s, file, logger)

	output, err := FormatResponse(result, OutputFormat(statesFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	logger.Debug("Overrides applied", map[string]interface{}{
		"applied":  result.Applied,
		"failed":   result.Failed,
		"duration": time.Since(start).Milliseconds(),
	})

	if result.Failed > 0 {
		os.Exit(1)
	}
}

func runStatesHistory(cmd *cobra.Command, args []string) {
	logger := newLogger(statesFormat)
	s := mustGetStore(resolveDataRoot(), logger)

	record := mustFindRecord(s, args[0])
	transitions, err := s.Transitions(record.URL, historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		os.Exit(1)
	}

	response := &HistoryResponseCLI{URL: record.URL, Transitions: transitions}
	output, err := FormatResponse(response, OutputFormat(statesFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

// mustFindRecord looks a package up by owner/repo reference or URL, exiting
// when it is not tracked.
func mustFindRecord(s *store.Store, ref string) *store.Record {
	var record *store.Record
	var err error

	if id, parseErr := identity.Parse(ref); parseErr == nil {
		record, err = s.GetByOwnerRepo(id.Owner, id.Repo)
	} else {
		record, err = s.GetByURL(identity.Normalize(ref))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error looking up package: %v\n", err)
		os.Exit(1)
	}
	if record == nil {
		fmt.Fprintf(os.Stderr, "Error: package %q is not tracked\n", ref)
		os.Exit(1)
	}
	return record
}
