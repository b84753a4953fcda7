package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agbs2k8/eostre/gateway"
	"github.com/agbs2k8/eostre/internal/app"
	"github.com/agbs2k8/eostre/session"
	"github.com/agbs2k8/eostre/token"
	"github.com/fatih/color"
)

const passwordEnvVar = "EOSTRE_PASSWORD"

func readPassword() (string, error) {
	if pw := os.Getenv(passwordEnvVar); pw != "" {
		return pw, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func login(ctx context.Context, client *app.Client, username string) error {
	password, err := readPassword()
	if err != nil {
		return err
	}
	return client.Session.Login(ctx, username, password)
}

func cmdLogin(ctx context.Context, client *app.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: eostre login <username>")
	}
	if err := login(ctx, client, args[0]); err != nil {
		return err
	}
	color.Green("Logged in as %s\n", client.Session.Identity().Username)
	return nil
}

func cmdLogout(ctx context.Context, client *app.Client) error {
	client.Session.Logout(ctx)
	color.Green("Logged out\n")
	return nil
}

func cmdWhoami(client *app.Client) error {
	id := client.Session.Identity()
	if id == nil {
		color.Yellow("Not logged in\n")
		return nil
	}
	printIdentity(id)
	return nil
}

func printIdentity(id *token.Identity) {
	cyan := color.New(color.FgCyan)

	cyan.Println("Identity:")
	fmt.Printf("  Username:  %s\n", id.Username)
	fmt.Printf("  Subject:   %s\n", id.Subject)
	if id.AccountID != "" {
		fmt.Printf("  Account:   %s\n", id.AccountID)
	}
	if id.HasExpiry() {
		fmt.Printf("  Expires:   %s (%ds left)\n", id.ExpiresAt.Local().Format(time.RFC3339), id.SecondsLeft(time.Now()))
	}
	for account, perms := range id.Permissions {
		fmt.Printf("  Account %s: %s\n", account, strings.Join(perms, ", "))
	}
}

func cmdRefresh(ctx context.Context, client *app.Client) error {
	if err := client.Session.Refresh(ctx); err != nil {
		return err
	}
	color.Green("Token refreshed, expires %s\n", client.Session.Identity().ExpiresAt.Local().Format(time.RFC3339))
	return nil
}

func cmdRequest(ctx context.Context, client *app.Client, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: eostre request <METHOD> <path> [json]")
	}
	opts := gateway.Options{Method: args[0]}
	if len(args) == 3 {
		opts.Body = []byte(args[2])
	}

	res := client.Gateway.Request(ctx, args[1], opts)
	if res.Kind == gateway.RefreshError || res.Status == 0 {
		return res.Err
	}

	status := color.New(color.FgGreen)
	if !res.OK() {
		status = color.New(color.FgRed)
	}
	status.Printf("%d %s\n", res.Status, res.Kind)
	fmt.Println(string(res.Body))
	return nil
}

func cmdProfile(ctx context.Context, client *app.Client) error {
	profile, err := client.Admin.Users.Me(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Println("Profile:")
	fmt.Printf("  ID:        %s\n", profile.ID)
	fmt.Printf("  Name:      %s\n", profile.Name)
	fmt.Printf("  Display:   %s\n", profile.DisplayName)
	fmt.Printf("  Type:      %s\n", profile.Type)
	for _, e := range profile.Emails {
		fmt.Printf("  Email:     %s (primary: %t)\n", e.Email, e.Primary)
	}
	for _, g := range profile.Grants {
		fmt.Printf("  Grant:     %s on %s\n", g.RoleName, g.AccountName)
	}
	return nil
}

func cmdRoles(ctx context.Context, client *app.Client) error {
	roles, err := client.Admin.Roles.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACTIVE\tPERMISSIONS")
	for _, r := range roles {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", r.ID, r.Name, r.Active, strings.Join(r.Permissions, ","))
	}
	return w.Flush()
}

func cmdLocations(ctx context.Context, client *app.Client) error {
	locations, err := client.Admin.Locations.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACCOUNT\tACTIVE")
	for _, l := range locations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", l.ID, l.Name, l.AccountID, l.Active)
	}
	return w.Flush()
}

// cmdWatch blocks until interrupted. The refresh cookie only lives in this
// process, so a username logs in first to make watchdog refreshes possible.
func cmdWatch(ctx context.Context, client *app.Client, args []string) error {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	unsubscribe := client.Session.Subscribe(func(s session.State) {
		if s.Authenticated {
			green.Printf("%s authenticated as %s until %s\n", time.Now().Format(time.Kitchen),
				s.Identity.Username, s.Identity.ExpiresAt.Local().Format(time.Kitchen))
			return
		}
		yellow.Printf("%s anonymous\n", time.Now().Format(time.Kitchen))
	})
	defer unsubscribe()

	if len(args) == 1 {
		if err := login(ctx, client, args[0]); err != nil {
			return err
		}
	} else if !client.Session.IsAuthenticated() {
		return fmt.Errorf("not logged in; use eostre watch <username>")
	}

	<-ctx.Done()
	return nil
}
