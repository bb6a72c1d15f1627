package cli

import (
	"bufio"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mramin786/jboss-monitor/internal/errors"
	"github.com/mramin786/jboss-monitor/internal/monitor"
)

var (
	credUserFlag     string
	credPasswordFlag string
)

// credentialsCmd stores the monitoring credential for one environment.
var credentialsCmd = &cobra.Command{
	Use:   "credentials <environment>",
	Short: "Store monitoring credentials for an environment",
	Long: `Write the system credential used to poll every host in an environment.
The password is prompted without echo unless --password is given; prefer
the prompt on shared machines so the password stays out of shell history.

Environment variables (PROD_JBOSS_USERNAME and friends) override the
stored file at poll time.

Examples:
  jboss-monitor credentials production
  jboss-monitor credentials non_production --username monitor`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := parseEnvironment(args[0])
		if err != nil {
			return err
		}

		a, err := buildApp()
		if err != nil {
			return err
		}

		username := credUserFlag
		if username == "" {
			username, err = promptLine(cmd, "Username: ")
			if err != nil {
				return err
			}
		}

		password := credPasswordFlag
		if password == "" {
			password, err = promptPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
		}

		cred := monitor.Credential{Username: username, Password: password}
		if err := a.registry.SetCredentials(env, cred); err != nil {
			return err
		}
		cmd.Printf("credentials stored for %s\n", env)
		return nil
	},
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig, "Cannot read input", "")
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		// Piped input, fall back to a plain read.
		return promptLine(cmd, prompt)
	}

	fmt.Fprint(cmd.OutOrStdout(), prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig, "Cannot read password", "")
	}
	return strings.TrimSpace(string(raw)), nil
}

func init() {
	credentialsCmd.Flags().StringVarP(&credUserFlag, "username", "u", "", "monitoring username")
	credentialsCmd.Flags().StringVarP(&credPasswordFlag, "password", "p", "", "monitoring password (prompted when omitted)")
	rootCmd.AddCommand(credentialsCmd)
}
