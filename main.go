package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"qlink-client/api"
	"qlink-client/cache"
	"qlink-client/config"
	"qlink-client/form"
	"qlink-client/guard"
	appLogger "qlink-client/logger"
	"qlink-client/model"
	"qlink-client/notify"
	"qlink-client/session"
	"qlink-client/stubserver"
)

func main() {
	stubMode := flag.Bool("stub", false, "run the development stub backend instead of the client")
	flag.Parse()

	// Initialize logger
	appLogger.Initialize()

	// Load configuration
	cfg := config.MustLoadConfig()
	log.Info().Msg("Configuration loaded successfully")

	if *stubMode {
		runStub(cfg)
		return
	}
	runClient(cfg)
}

// runStub serves the development backend with graceful shutdown.
func runStub(cfg config.Config) {
	rdb, err := stubserver.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	server := stubserver.New(cfg.Stub, cfg.Redis, rdb)

	addr := fmt.Sprintf("%s:%s", cfg.Stub.IP, cfg.Stub.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.Stub.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Stub.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Stub backend listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Stub backend failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down stub backend")
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Stub.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}

// runClient starts the interactive shell.
func runClient(cfg config.Config) {
	origin := session.OriginOf(cfg.API.LoginURL)
	store := session.New(cfg.Session.File, origin)

	notifier := notify.New(func(n notify.Notification) {
		fmt.Printf("  [%s] %s\n", n.Kind, n.Message)
	})
	defer notifier.Close()

	client := api.New(cfg.API, store.Get)

	ackWindow := time.Duration(cfg.Notify.CopyAckMS) * time.Millisecond
	results, err := cache.New(cfg.Recent, ackWindow, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize result cache")
	}
	defer results.Close()

	sh := &shell{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		client:   client,
		results:  results,
		in:       bufio.NewReader(os.Stdin),
		route:    guard.RouteHome,
	}
	sh.run()
}

// shell is the thin page layer: it owns the current route, reads
// input, and delegates every decision to the guard and the form
// controllers.
type shell struct {
	cfg      config.Config
	store    *session.Store
	notifier *notify.Notifier
	client   *api.Client
	results  *cache.ResultCache
	in       *bufio.Reader
	route    guard.Route
	quit     bool
}

func (sh *shell) Navigate(r guard.Route) {
	sh.route = r
}

func pageKindOf(route guard.Route) guard.PageKind {
	switch route {
	case guard.RouteLogin, guard.RouteRegister:
		return guard.PagePublicAuth
	default:
		return guard.PageProtected
	}
}

func (sh *shell) run() {
	fmt.Println("Qlink URL shortener")
	for !sh.quit {
		// The guard runs on every mount, and again after every session
		// transition because each transition routes through here.
		if target, redirect := guard.Decide(pageKindOf(sh.route), sh.store.IsAuthenticated()); redirect {
			sh.Navigate(target)
			continue
		}

		switch sh.route {
		case guard.RouteLogin:
			sh.loginPage()
		case guard.RouteRegister:
			sh.registerPage()
		default:
			sh.homePage()
		}
	}
}

// readLine prompts and returns the trimmed input; ok is false on EOF.
func (sh *shell) readLine(prompt string) (string, bool) {
	fmt.Print(prompt)
	line, err := sh.in.ReadString('\n')
	if err != nil {
		sh.quit = true
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (sh *shell) loginPage() {
	fmt.Println("\n-- Sign in (enter 'register' to create an account, 'quit' to exit) --")

	ctrl := form.New(model.FormLogin, form.Deps{
		API:      sh.client,
		Sessions: sh.store,
		Notifier: sh.notifier,
		Nav:      sh,
	})
	defer ctrl.Close()

	email, ok := sh.readLine("email: ")
	if !ok {
		return
	}
	switch email {
	case "register":
		sh.Navigate(guard.RouteRegister)
		return
	case "quit":
		sh.quit = true
		return
	}

	password, ok := sh.readLine("password: ")
	if !ok {
		return
	}

	ctrl.SetField(model.FieldEmail, email)
	ctrl.SetField(model.FieldPassword, password)

	if err := ctrl.Submit(context.Background()); err != nil {
		log.Debug().Err(err).Msg("Login submission did not succeed")
	}
}

func (sh *shell) registerPage() {
	fmt.Println("\n-- Create an account (enter 'login' to sign in instead) --")

	ctrl := form.New(model.FormRegister, form.Deps{
		API:      sh.client,
		Notifier: sh.notifier,
		Nav:      sh,
	})
	defer ctrl.Close()

	username, ok := sh.readLine("username: ")
	if !ok {
		return
	}
	if username == "login" {
		sh.Navigate(guard.RouteLogin)
		return
	}

	prompts := []struct {
		label string
		field string
	}{
		{"email: ", model.FieldEmail},
		{"password: ", model.FieldPassword},
		{"confirm password: ", model.FieldConfirmPassword},
	}

	ctrl.SetField(model.FieldUsername, username)
	for _, p := range prompts {
		value, ok := sh.readLine(p.label)
		if !ok {
			return
		}
		ctrl.SetField(p.field, value)
	}

	if err := ctrl.Submit(context.Background()); err != nil {
		log.Debug().Err(err).Msg("Registration submission did not succeed")
	}
}

func (sh *shell) homePage() {
	fmt.Println("\n-- Shorten a URL (commands: copy, qr, logout, quit) --")
	if current, ok := sh.results.Current(); ok {
		fmt.Printf("  last result: %s -> %s\n", current.OriginalURL, current.ShortURL)
	}

	ctrl := form.New(model.FormShorten, form.Deps{
		API:      sh.client,
		Results:  sh.results,
		Notifier: sh.notifier,
		Nav:      sh,
	})
	defer ctrl.Close()

	input, ok := sh.readLine("url: ")
	if !ok {
		return
	}

	switch input {
	case "copy":
		sh.copyResult()
		return
	case "qr":
		sh.printQR()
		return
	case "logout":
		if err := sh.store.Clear(); err != nil {
			log.Error().Err(err).Msg("Failed to clear session")
		}
		sh.Navigate(guard.RouteLogin)
		return
	case "quit":
		sh.quit = true
		return
	}

	if short, ok := sh.results.Lookup(input); ok {
		fmt.Printf("  note: shortened before as %s\n", short)
	}

	ctrl.SetField(model.FieldURL, input)
	if err := ctrl.Submit(context.Background()); err != nil {
		log.Debug().Err(err).Msg("Shorten submission did not succeed")
		return
	}
	if current, ok := sh.results.Current(); ok {
		fmt.Printf("  %s\n", current.ShortURL)
	}
}

func (sh *shell) copyResult() {
	if err := sh.results.Copy(); err != nil {
		sh.notifier.Publish(notify.Error, "Nothing to copy yet.", notify.DefaultDuration)
		return
	}
	ack := time.Duration(sh.cfg.Notify.CopyAckMS) * time.Millisecond
	sh.notifier.Publish(notify.Success, "Copied to clipboard!", ack)
}

func (sh *shell) printQR() {
	current, ok := sh.results.Current()
	if !ok {
		sh.notifier.Publish(notify.Info, "Shorten a URL first.", notify.DefaultDuration)
		return
	}
	qr, err := qrcode.New(current.ShortURL, qrcode.Medium)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build QR code")
		return
	}
	fmt.Println(qr.ToSmallString(false))
}
