package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/review"
	"github.com/trezcool/darasa/core/settings"
	"github.com/trezcool/darasa/core/team"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	mongorepos "github.com/trezcool/darasa/storage/database/mongo"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up repositories on the configured engine
	var (
		teamRepo     team.Repository
		settingsRepo settings.Repository
		assignRepo   assignment.Repository
		gradeRepo    grade.Repository
		courseRepo   course.Repository
	)
	switch conf.Database.Engine {
	case "mongodb":
		mdb, err := mongorepos.Open(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up mongodb: %v", err), err)
		}
		defer func() {
			if err = mdb.Client().Disconnect(context.Background()); err != nil {
				logger.Error(fmt.Sprintf("disconnecting mongodb: %v", err), err)
			}
		}()
		teamRepo = mongorepos.NewTeamRepository(mdb)
		settingsRepo = mongorepos.NewSettingsRepository(mdb)
		assignRepo = mongorepos.NewAssignmentRepository(mdb)
		gradeRepo = mongorepos.NewGradeRepository(mdb)
		courseRepo = mongorepos.NewCourseRepository(mdb)
	default: // postgres
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				logger.Error(fmt.Sprintf("closing database: %v", err), err)
			}
		}()
		teamRepo = sqlxrepos.NewTeamRepository(db)
		settingsRepo = sqlxrepos.NewSettingsRepository(db)
		assignRepo = sqlxrepos.NewAssignmentRepository(db)
		gradeRepo = sqlxrepos.NewGradeRepository(db)
		courseRepo = sqlxrepos.NewCourseRepository(db)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}
	settingsSvc := settings.NewService(settingsRepo)
	teamSvc := team.NewService(teamRepo, settingsSvc, mailSvc, logger, conf)
	assignSvc := assignment.NewService(assignRepo)
	gradeSvc := grade.NewService(gradeRepo, teamRepo, assignSvc)
	courseSvc := course.NewService(courseRepo)
	resolver := review.NewResolver(teamRepo, assignRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			TeamSvc:     teamSvc,
			SettingsSvc: settingsSvc,
			AssignSvc:   assignSvc,
			GradeSvc:    gradeSvc,
			CourseSvc:   courseSvc,
			Resolver:    resolver,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
