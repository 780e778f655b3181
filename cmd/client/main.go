// Package main runs the interactive agenda client: a shell over the
// data store that starts on device-local storage and switches to the
// cloud vault after login.
package main

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/addictsagenda/agenda/internal/goals"
	"github.com/addictsagenda/agenda/internal/homegroup"
	"github.com/addictsagenda/agenda/internal/journal"
	"github.com/addictsagenda/agenda/internal/meetings"
	"github.com/addictsagenda/agenda/internal/models"
	"github.com/addictsagenda/agenda/internal/sobriety"
	"github.com/addictsagenda/agenda/internal/storage"
	"github.com/addictsagenda/agenda/internal/workbook"

	exportpkg "github.com/addictsagenda/agenda/internal/export"
)

const (
	apiRegister = "/api/register"
	apiLogin    = "/api/login"
)

var (
	version   string
	buildDate string
)

// app bundles the data store and the feature services the shell drives.
type app struct {
	client    *http.Client
	baseURL   string
	session   *storage.SessionHolder
	store     *storage.DataStore
	sobriety  *sobriety.Service
	journal   *journal.Service
	goals     *goals.Service
	meetings  *meetings.Service
	challenge *meetings.ChallengeService
	homegroup *homegroup.Service
	workbook  *workbook.Service
	export    *exportpkg.Service
}

// authenticate posts credentials and installs the returned session,
// switching storage to the cloud vault.
func (a *app) authenticate(path, login, password string) error {
	body, err := json.Marshal(map[string]string{"login": login, "password": password})
	if err != nil {
		return err
	}
	resp, err := a.client.Post(a.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server responded %s", resp.Status)
	}
	var token struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return err
	}
	a.session.Set(storage.Session{Login: login, Token: token.Token})
	a.store.SetStorageEngine(storage.SessionCloud)
	return nil
}

// logout drops the session and falls back to device-local storage.
func (a *app) logout() {
	a.session.Clear()
	a.store.SetStorageEngine(storage.SessionLocal)
}

func promptCredentials(scanner *bufio.Scanner) (login, password string, ok bool) {
	fmt.Print("login: ")
	if !scanner.Scan() {
		return "", "", false
	}
	login = strings.TrimSpace(scanner.Text())
	fmt.Print("password: ")
	if !scanner.Scan() {
		return "", "", false
	}
	return login, strings.TrimSpace(scanner.Text()), true
}

// repl runs the interactive loop, accepting commands to manage
// recovery data.
func (a *app) repl() {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("agenda[%s]> ", a.store.Engine())
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Commands: help, register, login, logout, sobriety [YYYY-MM-DD], days,")
			fmt.Println("  journal <text>, entries, goal <text>, goals, done <id>,")
			fmt.Println("  meeting <name>, meetings, challenge [start|day <n>],")
			fmt.Println("  member <name>, members, answer <question> <text>, workbook,")
			fmt.Println("  export <file>, import <file>, wipe, exit")
		case "register", "login":
			login, password, ok := promptCredentials(scanner)
			if !ok {
				return
			}
			path := apiLogin
			if args[0] == "register" {
				path = apiRegister
			}
			if err := a.authenticate(path, login, password); err != nil {
				fmt.Println("Error:", err)
				continue
			}
			fmt.Println("Signed in, storage switched to cloud")
		case "logout":
			a.logout()
			fmt.Println("Signed out, storage switched to local")
		case "sobriety":
			if len(args) < 2 {
				if date, ok := a.sobriety.Date(ctx); ok {
					fmt.Println("Sobriety date:", date.Format("2006-01-02"))
				} else {
					fmt.Println("No sobriety date set")
				}
				continue
			}
			date, err := time.Parse("2006-01-02", args[1])
			if err != nil {
				fmt.Println("Usage: sobriety YYYY-MM-DD")
				continue
			}
			if err := a.sobriety.SetDate(ctx, date); err != nil {
				fmt.Println("Error:", err)
			}
		case "days":
			fmt.Printf("%d days sober\n", a.sobriety.DaysSober(ctx, time.Now()))
			if next, ok := a.sobriety.NextMilestone(ctx, time.Now()); ok {
				fmt.Println("Next milestone:", next.Label)
			}
		case "journal":
			if len(args) < 2 {
				fmt.Println("Usage: journal <text>")
				continue
			}
			if _, err := a.journal.Add(ctx, strings.Join(args[1:], " "), 0, nil, ""); err != nil {
				fmt.Println("Error:", err)
			}
		case "entries":
			for _, e := range a.journal.Entries(ctx) {
				fmt.Printf("%s  %s\n", e.ID, e.Text)
			}
		case "goal":
			if len(args) < 2 {
				fmt.Println("Usage: goal <text>")
				continue
			}
			if _, err := a.goals.Add(ctx, strings.Join(args[1:], " ")); err != nil {
				fmt.Println("Error:", err)
			}
		case "goals":
			for _, g := range a.goals.List(ctx) {
				mark := " "
				if g.Completed {
					mark = "x"
				}
				fmt.Printf("[%s] %s  %s\n", mark, g.ID, g.Text)
			}
		case "done":
			if len(args) < 2 {
				fmt.Println("Usage: done <id>")
				continue
			}
			if _, err := a.goals.Toggle(ctx, args[1]); err != nil {
				fmt.Println("Error:", err)
			}
		case "meeting":
			if len(args) < 2 {
				fmt.Println("Usage: meeting <name>")
				continue
			}
			if _, err := a.meetings.Add(ctx, models.Meeting{Name: strings.Join(args[1:], " ")}); err != nil {
				fmt.Println("Error:", err)
			}
		case "meetings":
			for _, m := range a.meetings.List(ctx) {
				fmt.Printf("%s  %s %s %s\n", m.ID, m.Name, m.Day, m.Time)
			}
		case "challenge":
			a.challengeCmd(ctx, args[1:])
		case "member":
			if len(args) < 2 {
				fmt.Println("Usage: member <name>")
				continue
			}
			if _, err := a.homegroup.AddMember(ctx, models.Member{Name: strings.Join(args[1:], " ")}); err != nil {
				fmt.Println("Error:", err)
			}
		case "members":
			for _, m := range a.homegroup.Members(ctx) {
				fmt.Printf("%s  %s %s\n", m.ID, m.Name, m.Role)
			}
		case "answer":
			if len(args) < 3 {
				fmt.Println("Usage: answer <question> <text>")
				continue
			}
			if err := a.workbook.SetAnswer(ctx, args[1], strings.Join(args[2:], " ")); err != nil {
				fmt.Println("Error:", err)
			}
		case "workbook":
			done := a.workbook.CompletedTopics(ctx)
			if len(done) == 0 {
				fmt.Println("No topics started yet")
				continue
			}
			for _, id := range done {
				answered, total := a.workbook.Completion(ctx, id)
				fmt.Printf("%s  %d/%d answered\n", id, answered, total)
			}
		case "export":
			if len(args) < 2 {
				fmt.Println("Usage: export <file>")
				continue
			}
			data, err := a.export.Export(ctx)
			if err != nil {
				fmt.Println("Error:", err)
				continue
			}
			if err := os.WriteFile(args[1], data, 0o600); err != nil {
				fmt.Println("Error:", err)
			}
		case "import":
			if len(args) < 2 {
				fmt.Println("Usage: import <file>")
				continue
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				fmt.Println("Error:", err)
				continue
			}
			n, err := a.export.Import(ctx, data)
			if err != nil {
				fmt.Println("Error:", err)
				continue
			}
			fmt.Printf("Imported %d domains\n", n)
		case "wipe":
			fmt.Print("Delete ALL data on the active backend? (yes/no): ")
			if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "yes" {
				fmt.Println("Cancelled")
				continue
			}
			if err := a.store.DeleteAll(ctx); err != nil {
				fmt.Println("Error:", err)
			}
		case "exit":
			fmt.Println("Keep coming back")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func (a *app) challengeCmd(ctx context.Context, args []string) {
	if len(args) == 0 {
		p, ok := a.challenge.Progress(ctx, time.Now())
		if !ok {
			fmt.Println("No challenge in progress. Use 'challenge start'.")
			return
		}
		fmt.Printf("Day %d of %d, %d meetings attended\n", p.CurrentDay, meetings.ChallengeDays, p.Attended)
		return
	}
	switch args[0] {
	case "start":
		if err := a.challenge.Start(ctx, time.Now()); err != nil {
			fmt.Println("Error:", err)
		}
	case "day":
		if len(args) < 2 {
			fmt.Println("Usage: challenge day <n>")
			return
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("Usage: challenge day <n>")
			return
		}
		if err := a.challenge.ToggleDay(ctx, n-1); err != nil {
			fmt.Println("Error:", err)
		}
	default:
		fmt.Println("Usage: challenge [start|day <n>]")
	}
}

func main() {
	var (
		baseURL  string
		dataFile string
		showVer  bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "vault server base URL")
	flag.StringVar(&dataFile, "file", "agenda.json", "path to the local data file")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Agenda Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	log := zap.NewNop()

	client := &http.Client{Timeout: 15 * time.Second}
	session := &storage.SessionHolder{}
	local := storage.NewLocalStore(dataFile, log)
	remote := storage.NewRemoteStore(baseURL, client, session, log)
	store := storage.New(local, remote, log)

	wb, err := workbook.NewService(store)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	a := &app{
		client:    client,
		baseURL:   baseURL,
		session:   session,
		store:     store,
		sobriety:  sobriety.NewService(store),
		journal:   journal.NewService(store),
		goals:     goals.NewService(store),
		meetings:  meetings.NewService(store),
		challenge: meetings.NewChallengeService(store),
		homegroup: homegroup.NewService(store),
		workbook:  wb,
		export:    exportpkg.NewService(store),
	}
	a.repl()
}
