package main

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/hypermines/internal/config"
	"github.com/vancomm/hypermines/internal/mines"
	"github.com/vancomm/hypermines/internal/placement"
	"github.com/vancomm/hypermines/internal/store"
)

var log = logrus.New()

func setupLogging(cfg Config) error {
	logLevel := logrus.InfoLevel
	if cfg.Debug || config.Development() {
		logLevel = logrus.DebugLevel
	}
	log.SetLevel(logLevel)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	if cfg.LogFile == "" {
		return nil
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   cfg.LogFile,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     28,
		Level:      logLevel,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return fmt.Errorf("unable to open log file %s: %w", cfg.LogFile, err)
	}
	log.AddHook(hook)
	return nil
}

func newRand(cfg Config) *rand.Rand {
	if cfg.Seed == nil {
		return placement.NewRand()
	}
	return rand.New(rand.NewPCG(*cfg.Seed, *cfg.Seed))
}

// openSaves returns the save store, or nil when saving is disabled.
func openSaves(path string) (*store.Store, func() error, error) {
	if path == "" {
		return nil, func() error { return nil }, nil
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, err
	}
	saves, err := store.New(db, "saves")
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return saves, db.Close, nil
}

// resume loads a game in progress saved under name.
func resume(saves *store.Store, name string, limits mines.Limits) (*mines.Board, error) {
	if saves == nil {
		return nil, nil
	}
	var state []byte
	err := saves.Get(name, &state)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	board, err := mines.DecodeBoard(state, mines.WithLimits(limits))
	if err != nil {
		return nil, err
	}
	if board.Status() != mines.Playing {
		return nil, nil
	}
	return board, nil
}

func listSaves(saves *store.Store) error {
	if saves == nil {
		return errors.New("-list requires -save")
	}
	count, err := saves.Count()
	if err != nil {
		return err
	}
	names, err := saves.GetAllKeys()
	if err != nil {
		return err
	}
	fmt.Printf("%d saved games\n", count)
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func run(cfg Config) error {
	limits, err := config.Limits()
	if err != nil {
		return err
	}

	shape, err := mines.ParseShape(cfg.Shape)
	if err != nil {
		return err
	}
	if err := shape.Validate(limits); err != nil {
		return err
	}

	saves, closeSaves, err := openSaves(cfg.Save)
	if err != nil {
		return fmt.Errorf("unable to open saves: %w", err)
	}
	defer closeSaves()

	if cfg.List {
		return listSaves(saves)
	}

	g := &game{
		log:    log,
		shape:  shape,
		count:  cfg.Mines,
		rnd:    newRand(cfg),
		limits: limits,
	}

	if g.board, err = resume(saves, cfg.Name, limits); err != nil {
		return fmt.Errorf("unable to resume %q: %w", cfg.Name, err)
	}
	if g.board != nil {
		g.shape = g.board.Shape()
		log.WithField("name", cfg.Name).Info("resumed saved game")
	}

	var save func(*mines.Board) error
	if saves != nil {
		save = func(b *mines.Board) error {
			if b.Status() != mines.Playing {
				return saves.Delete(cfg.Name)
			}
			state, err := b.Bytes()
			if err != nil {
				return err
			}
			return saves.Set(cfg.Name, state)
		}
	}

	outcome, err := g.play(os.Stdin, os.Stdout, save)
	log.WithField("outcome", outcome.String()).Debug("game finished")
	return err
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if err := setupLogging(cfg); err != nil {
		log.Fatal(err)
	}
	log.WithFields(cfg.Fields()).Debug("config")

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}
