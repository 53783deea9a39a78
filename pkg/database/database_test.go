package database

import (
	"strings"
	"testing"
	"time"

	"assessment_backend/internal/config"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.DatabaseConfig
		want    string
		wantErr bool
	}{
		{
			name: "mysql",
			cfg:  config.DatabaseConfig{Driver: "mysql", User: "u", Password: "p", Host: "db", Port: 3306, DBName: "assess", Charset: "utf8mb4", ParseTime: true},
			want: "u:p@tcp(db:3306)/assess?charset=utf8mb4&parseTime=true&loc=UTC",
		},
		{
			name: "postgres defaults sslmode",
			cfg:  config.DatabaseConfig{Driver: "postgres", User: "u", Password: "p", Host: "db", Port: 5432, DBName: "assess"},
			want: "host=db port=5432 user=u password=p dbname=assess sslmode=disable TimeZone=UTC",
		},
		{
			name: "sqlite file",
			cfg:  config.DatabaseConfig{Driver: "sqlite", Path: "assess.db"},
			want: "assess.db",
		},
		{
			name:    "unknown driver",
			cfg:     config.DatabaseConfig{Driver: "oracle"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DSN(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("DSN = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestInitDB_SqliteMigrates(t *testing.T) {
	db, err := InitDB(&config.DatabaseConfig{Driver: "sqlite", Path: "file:initdb_test?mode=memory&cache=shared", LogLevel: "silent"}, true)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	for _, table := range []string{"users", "assessments", "assessment_questions", "assessment_attempts", "attempt_grade_records", "attempt_grade_audits"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("table %s not migrated", table)
		}
	}
	if !strings.Contains(db.Dialector.Name(), "sqlite") {
		t.Fatalf("dialector = %s", db.Dialector.Name())
	}
}

func TestInitRedis(t *testing.T) {
	rdb, err := InitRedis(&config.RedisConfig{Enabled: false})
	if err != nil || rdb != nil {
		t.Fatalf("disabled redis: %v %v", rdb, err)
	}

	// Port 1 on loopback refuses connections.
	_, err = InitRedis(&config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1, DialTimeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatal("unreachable redis must fail")
	}
}
