package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"wlproxy/pkg/completions"
	"wlproxy/pkg/config"
	"wlproxy/pkg/errors"
	"wlproxy/pkg/eventloop"
	"wlproxy/pkg/formatfilter"
	"wlproxy/pkg/logger"
	"wlproxy/pkg/proxystate"

	"github.com/spf13/cobra"
)

const unknownValue = "unknown"

var (
	Version   string
	BuildTime string
	GitCommit string
)

var (
	allowFlags         []string
	denyFlags          []string
	listenNameFlag     string
	upstreamFlag       string
	logLevelFlag       string
	configPathFlag     string
	generateCompletion string
)

var rootCmd = &cobra.Command{
	Use:   "wl-format-filter -- PROGRAM [ARGS...]",
	Short: "Transparent Wayland proxy that filters buffer format/modifier advertisements",
	Long: `wl-format-filter sits between a Wayland client and the real compositor,
forwarding every message unchanged except wl_shm/wl_drm/zwp_linux_dmabuf_v1
format and modifier advertisements: one that matches an --allow filter is
passed, otherwise one that matches a --deny filter is dropped, and one that
matches neither is passed. Run it in front of the
program you want to test with a reduced set of advertised formats:

  wl-format-filter --deny nv12:invalid -- weston-simple-egl`,
	DisableFlagsInUseLine: true,
	RunE:                  runProxy,
}

func runProxy(cmd *cobra.Command, args []string) error {
	if generateCompletion != "" {
		return runGenerateCompletion(cmd, generateCompletion)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)

	logger.SetLevel(cfg.LogLevel)

	filter, err := formatfilter.New(cfg.Allow, cfg.Deny)
	if err != nil {
		return errors.FilterParseError(fmt.Sprintf("%v / %v", cfg.Allow, cfg.Deny), err)
	}

	upstreamPath, err := resolveUpstreamPath(cfg.Upstream)
	if err != nil {
		return err
	}

	state, err := proxystate.New(cfg.ListenName, upstreamPath, filter)
	if err != nil {
		return errors.BindError(cfg.ListenName, err)
	}
	defer state.CloseListener()

	program, programArgs := splitChildCommand(cmd, args)
	if program != "" {
		child := exec.Command(program, programArgs...)
		child.Env = append(os.Environ(), "WAYLAND_DISPLAY="+cfg.ListenName)
		child.Stdin = os.Stdin
		child.Stdout = os.Stdout
		child.Stderr = os.Stderr
		if err := child.Start(); err != nil {
			return errors.NewWithError(errors.ExitCodeGeneral, "failed to start child process", err)
		}
		logger.Info().Str("program", program).Msg("started child process")
		go func() {
			_ = child.Wait()
			state.Destroyed = true
		}()
	}

	return eventloop.Run(state)
}

// splitChildCommand returns the program and arguments trailing a literal
// "--", cobra's own convention for "everything after this is not a flag of
// mine".
func splitChildCommand(cmd *cobra.Command, args []string) (string, []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 || dash >= len(args) {
		return "", nil
	}
	return args[dash], args[dash+1:]
}

func loadConfig() (*config.Config, error) {
	if configPathFlag != "" {
		return config.LoadFrom(configPathFlag)
	}
	return config.Load()
}

// applyFlagOverrides lets explicitly-set flags win over both the config
// file and its environment-variable overrides, since a flag is the most
// specific thing the user said.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("listen-name") {
		cfg.ListenName = listenNameFlag
	}
	if cmd.Flags().Changed("upstream") {
		cfg.Upstream = upstreamFlag
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}
	if cmd.Flags().Changed("allow") {
		cfg.Allow = allowFlags
	}
	if cmd.Flags().Changed("deny") {
		cfg.Deny = denyFlags
	}
}

// resolveUpstreamPath turns a WAYLAND_DISPLAY-style socket name (or an
// already-absolute path) into the filesystem path proxystate dials.
func resolveUpstreamPath(name string) (string, error) {
	if name == "" {
		name = "wayland-0"
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", errors.New(errors.ExitCodeConfig, "XDG_RUNTIME_DIR is not set, cannot locate upstream compositor socket")
	}
	return filepath.Join(runtimeDir, name), nil
}

// runGenerateCompletion is the hidden --generate-completion SHELL alias,
// kept for compatibility with the original CLI's flag-driven completion
// generation; it shells out to the same cobra machinery the "completion"
// subcommand uses.
func runGenerateCompletion(cmd *cobra.Command, shell string) error {
	switch shell {
	case "bash":
		return cmd.Root().GenBashCompletionV2(os.Stdout, true)
	case "zsh":
		return cmd.Root().GenZshCompletion(os.Stdout)
	case "fish":
		return cmd.Root().GenFishCompletion(os.Stdout, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
	default:
		return errors.ValidationError(fmt.Sprintf("unknown shell %q for --generate-completion, want bash|zsh|fish|powershell", shell))
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ver, bt, gc := Version, BuildTime, GitCommit
		if ver == "" {
			ver = "dev"
		}
		if bt == "" {
			bt = unknownValue
		}
		if gc == "" {
			gc = unknownValue
		}
		fmt.Printf("wl-format-filter version %s\n", ver)
		fmt.Printf("Built: %s\n", bt)
		fmt.Printf("Git commit: %s\n", gc)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		exitCode := errors.HandleReturn(err)
		os.Exit(int(exitCode))
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringSliceVar(&allowFlags, "allow", nil, "comma-separated list of FORMAT[:MODIFIER] filters to allow (default: allow everything)")
	rootCmd.Flags().StringSliceVar(&denyFlags, "deny", nil, "comma-separated list of FORMAT[:MODIFIER] filters to deny")
	rootCmd.Flags().StringVar(&listenNameFlag, "listen-name", config.DefaultListenName, "name of the proxy's listening socket under $XDG_RUNTIME_DIR")
	rootCmd.Flags().StringVar(&upstreamFlag, "upstream", "", "upstream compositor socket name or path (default: $WAYLAND_DISPLAY, falling back to wayland-0)")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "info", "log level (debug, info, warn, error, fatal, panic)")
	rootCmd.Flags().StringVar(&configPathFlag, "config", "", "path to a config file (default: $XDG_CONFIG_HOME/wl-format-filter/config.yaml)")
	rootCmd.Flags().StringVar(&generateCompletion, "generate-completion", "", "generate shell completion script (bash, zsh, fish, powershell)")
	rootCmd.Flags().MarkHidden("generate-completion")
	rootCmd.Flags().MarkDeprecated("generate-completion", "use the \"completion\" subcommand instead")

	completions.RegisterCompletions(rootCmd)
}
