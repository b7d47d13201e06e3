package database

import "testing"

func TestPostgresRewriteQuery(t *testing.T) {
	d := NewPostgresDialect()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT 1",
			want:  "SELECT 1",
		},
		{
			name:  "single placeholder",
			query: "SELECT * FROM students WHERE code = ?",
			want:  "SELECT * FROM students WHERE code = $1",
		},
		{
			name:  "multiple placeholders are numbered in order",
			query: "INSERT INTO students (name, code) VALUES (?, ?)",
			want:  "INSERT INTO students (name, code) VALUES ($1, $2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.RewriteQuery(tt.query); got != tt.want {
				t.Errorf("RewriteQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestSQLiteAndMySQLKeepPlaceholders(t *testing.T) {
	query := "SELECT * FROM students WHERE code = ? AND year_level = ?"

	if got := NewSQLiteDialect().RewriteQuery(query); got != query {
		t.Errorf("sqlite rewrote the query: %q", got)
	}
	if got := NewMySQLDialect().RewriteQuery(query); got != query {
		t.Errorf("mysql rewrote the query: %q", got)
	}
}

func TestMigrationsSubdirs(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{dialect: NewSQLiteDialect(), want: "sqlite"},
		{dialect: NewMySQLDialect(), want: "mysql"},
		{dialect: NewPostgresDialect(), want: "postgres"},
	}

	for _, tt := range tests {
		if got := tt.dialect.MigrationsSubdir(); got != tt.want {
			t.Errorf("MigrationsSubdir() = %q, want %q", got, tt.want)
		}
	}
}
