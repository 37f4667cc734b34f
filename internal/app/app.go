package app

import (
	"context"

	"github.com/sendwell/sendwell/internal/campaign/inbound"
	"github.com/sendwell/sendwell/internal/pkg/clock"
	"github.com/sendwell/sendwell/internal/pkg/config"
	"github.com/sendwell/sendwell/internal/pkg/instrument"
	"github.com/sendwell/sendwell/internal/pkg/mail"
	"github.com/sendwell/sendwell/internal/pkg/uid"
	"github.com/sendwell/sendwell/internal/pkg/validator"
)

// App wires dependencies and manages the dispatcher lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID

	// resources
	mail mail.Mail

	// inbound
	cli *inbound.CLI

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initMail()
	app.initModules()
	app.initClosers()

	return app
}
