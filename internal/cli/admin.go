package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stemsi/cyberassess-backend/internal/app"
	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/service"
)

const minPasswordLength = 8

func newCreateAdminCmd() *cobra.Command {
	var email, name, role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a dashboard user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				if email, err = prompt(cmd, in, "Email: "); err != nil {
					return err
				}
			}
			if name == "" {
				if name, err = prompt(cmd, in, "Name: "); err != nil {
					return err
				}
			}
			if email == "" || name == "" {
				return errors.New("email and name are required")
			}

			password, err := readPassword(cmd, in)
			if err != nil {
				return err
			}

			return e.withStores(cmd.Context(), func(st *app.Stores) error {
				if err := st.EnsureIndexes(cmd.Context()); err != nil {
					return err
				}
				auth := service.NewAuthService(e.cfg, st.Admins)
				admin, err := auth.CreateAdmin(cmd.Context(), email, name, role, password)
				if err != nil {
					return fmt.Errorf("create admin: %w", err)
				}
				cmd.Printf("Admin created: %s (%s, role %s)\n", admin.Email, admin.ID, admin.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&name, "name", "", "admin display name")
	cmd.Flags().StringVar(&role, "role", model.RoleAdmin, "role: admin or viewer")
	return cmd
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	cmd.Print(label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword prompts twice without echo on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		password, err := prompt(cmd, in, "")
		if err != nil {
			return "", err
		}
		return password, checkPassword(password)
	}

	cmd.Print("Password: ")
	first, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	cmd.Print("Confirm password: ")
	second, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), checkPassword(string(first))
}

func checkPassword(p string) error {
	if len(p) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}
