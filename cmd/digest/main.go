// Command digest is an interactive terminal client for the district digest
// service. It logs in, fetches a district digest for a chosen date and
// optionally saves the rendered PDF.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	apiclient "district-digest/internal/client"
	"district-digest/internal/cli"
	"district-digest/internal/domain/entity"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	baseURL := os.Getenv("DIGEST_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	downloadDir := os.Getenv("DIGEST_DOWNLOAD_DIR")
	if downloadDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		downloadDir = filepath.Join(home, "Downloads")
	}

	client := apiclient.New(baseURL)
	view := cli.NewTermView(os.Stdout)
	login := cli.NewLoginController(client, view)
	news := cli.NewNewsController(client, view, downloadDir)

	in := bufio.NewReader(os.Stdin)
	ctx := context.Background()

	if !runLogin(ctx, in, client, login) {
		os.Exit(1)
	}

	runSession(ctx, in, news)
}

// runLogin prompts for credentials until a login succeeds or the user gives
// up. Success is observed through the bearer token the client stores.
func runLogin(ctx context.Context, in *bufio.Reader, client *apiclient.Client, login *cli.LoginController) bool {
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Print("Username: ")
		username, err := in.ReadString('\n')
		if err != nil {
			return false
		}
		username = strings.TrimSpace(username)

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return false
		}

		login.Login(ctx, username, string(password))
		if client.Token() != "" {
			return true
		}
	}
	fmt.Println("Too many failed login attempts.")
	return false
}

// runSession loops over district/date selection until the user quits.
func runSession(ctx context.Context, in *bufio.Reader, news *cli.NewsController) {
	for {
		fmt.Println()
		for i, district := range entity.Districts {
			fmt.Printf("%2d) %s\n", i+1, district)
		}
		fmt.Print("District number (q to quit): ")

		line, err := in.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "q" || line == "quit" {
			return
		}

		idx, err := strconv.Atoi(line)
		if err != nil || idx < 1 || idx > len(entity.Districts) {
			fmt.Println("Please enter a number from the list.")
			continue
		}
		district := entity.Districts[idx-1]

		today := time.Now().In(entity.IST).Format("2006-01-02")
		fmt.Printf("Date [%s]: ", today)
		date, err := in.ReadString('\n')
		if err != nil {
			return
		}
		date = strings.TrimSpace(date)
		if date == "" {
			date = today
		}

		news.FetchNews(ctx, district, date)

		fmt.Print("Download PDF? [y/N]: ")
		answer, err := in.ReadString('\n')
		if err != nil {
			return
		}
		if strings.EqualFold(strings.TrimSpace(answer), "y") {
			news.Download(ctx)
		}
	}
}
