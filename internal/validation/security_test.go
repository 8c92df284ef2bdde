package validation

import (
	"testing"
)

func TestValidateArgument(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		wantErr bool
	}{
		{
			name:    "valid flag",
			arg:     "--no-source-map",
			wantErr: false,
		},
		{
			name:    "valid flag with value",
			arg:     "--load-path=node_modules",
			wantErr: false,
		},
		{
			name:    "command injection semicolon",
			arg:     "--quiet; rm -rf /",
			wantErr: true,
		},
		{
			name:    "command injection pipe",
			arg:     "--quiet | cat /etc/passwd",
			wantErr: true,
		},
		{
			name:    "command injection backtick",
			arg:     "--style=`whoami`",
			wantErr: true,
		},
		{
			name:    "path traversal",
			arg:     "--load-path=../../etc",
			wantErr: true,
		},
		{
			name:    "absolute path not allowed",
			arg:     "/home/user/file",
			wantErr: true,
		},
		{
			name:    "allowed system binary path",
			arg:     "/usr/bin/sass",
			wantErr: false,
		},
		{
			name:    "dangerous shell characters",
			arg:     "file$(whoami).scss",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgument(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateArgument() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		wantErr bool
	}{
		{"allowed command", "sass", false},
		{"empty command", "", true},
		{"not allowlisted", "bash", true},
		{"injection", "sass;ls", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCommand(tt.command, AllowedCompilerCommands)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCommand() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"absolute source", "/src/styles/app.scss", false},
		{"dots inside name", "/src/styles/app..min.scss", false},
		{"empty", "", true},
		{"parent element", "/src/../etc/passwd", true},
		{"ampersand in name", "/src/styles/a&b.scss", false},
		{"shell characters in name", "/src/$(id);x.scss", false},
		{"nul byte", "/src/a\x00.scss", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
