package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/openpayroll/payroll-backend-go/internal/config"
	appHTTP "github.com/openpayroll/payroll-backend-go/internal/handler/http"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/database"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/jwt"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/sse"
	"github.com/openpayroll/payroll-backend-go/internal/repository/postgresql"
	payrollService "github.com/openpayroll/payroll-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.App.LogLevel),
	})).With(
		slog.String("app", "payroll-backend"),
	)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	payrollRepo := postgresql.NewPayrollRepository(db)
	payheadRepo := postgresql.NewPayheadRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)
	hub := sse.NewHub()
	payrollSvc := payrollService.NewStagingService(payrollRepo, payheadRepo, attendanceRepo, logger, cfg.Payroll)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc, jwtService, hub)

	router := appHTTP.NewRouter(jwtService, payrollHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
