package pathenv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0kunkun0/ikunbuild/cli/execute"
	"github.com/0kunkun0/ikunbuild/cli/platform"
)

var (
	linux   = platform.Classify("Linux", "x86_64")
	windows = platform.Classify("Windows", "AMD64")
)

type recordingRunner struct {
	calls []execute.Command
	code  int
}

func (r *recordingRunner) Run(cmd execute.Command) (int, error) {
	r.calls = append(r.calls, cmd)
	return r.code, nil
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{in: "1", want: ScopeUser},
		{in: "user", want: ScopeUser},
		{in: " 2\n", want: ScopeSystem},
		{in: "System", want: ScopeSystem},
		{in: "3", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScope(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidScope)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const hostPath = `C:\Windows\system32;C:\Program Files\Git\cmd;`

// pathsByScope stands in for the registry.
func pathsByScope(user, system string) PathReader {
	return func(scope Scope) (string, error) {
		if scope == ScopeSystem {
			return system, nil
		}
		return user, nil
	}
}

func TestCommand_Windows(t *testing.T) {
	c := New(zerolog.Nop(), &recordingRunner{},
		WithHome(`C:\Users\ikun`),
		WithPathReader(pathsByScope(`C:\Users\ikun\bin`, hostPath)))

	user, err := c.Command(ScopeUser, windows, `C:\ikun`)
	require.NoError(t, err)
	assert.Equal(t, []string{"setx", "PATH", `C:\Users\ikun\bin;C:\ikun`}, user.Argv())

	system, err := c.Command(ScopeSystem, windows, `C:\ikun`)
	require.NoError(t, err)
	assert.Equal(t, []string{"setx", "/M", "PATH", `C:\Windows\system32;C:\Program Files\Git\cmd;C:\ikun`}, system.Argv())
}

func TestCommand_WindowsValueWithSpacesIsOneArgument(t *testing.T) {
	c := New(zerolog.Nop(), &recordingRunner{}, WithPathReader(pathsByScope("", hostPath)))

	cmd, err := c.Command(ScopeSystem, windows, `C:\Program Files\ikun`)
	require.NoError(t, err)

	// Nothing is left for cmd.exe to expand or split.
	require.Len(t, cmd.Args, 3)
	assert.NotContains(t, cmd.Args[2], "%")
	assert.Equal(t, `C:\Windows\system32;C:\Program Files\Git\cmd;C:\Program Files\ikun`, cmd.Args[2])
	assert.Equal(t, `setx /M PATH 'C:\Windows\system32;C:\Program Files\Git\cmd;C:\Program Files\ikun'`, cmd.String())
}

func TestCommand_WindowsEmptyUserPath(t *testing.T) {
	c := New(zerolog.Nop(), &recordingRunner{}, WithPathReader(pathsByScope("", hostPath)))

	cmd, err := c.Command(ScopeUser, windows, `C:\ikun`)
	require.NoError(t, err)
	assert.Equal(t, []string{"setx", "PATH", `C:\ikun`}, cmd.Argv())
}

func TestCommand_WindowsPathTooLong(t *testing.T) {
	long := strings.Repeat(`C:\tools\bin;`, 100)
	runner := &recordingRunner{}
	c := New(zerolog.Nop(), runner, WithPathReader(pathsByScope(long, long)))

	_, err := c.Command(ScopeUser, windows, `C:\ikun`)
	require.ErrorIs(t, err, ErrPathTooLong)

	code, err := c.Configure(ScopeSystem, windows, `C:\ikun`)
	require.ErrorIs(t, err, ErrPathTooLong)
	assert.Equal(t, -1, code)
	assert.Empty(t, runner.calls, "setx would truncate the value")
}

func TestCommand_WindowsReadFailure(t *testing.T) {
	c := New(zerolog.Nop(), &recordingRunner{}, WithPathReader(func(Scope) (string, error) {
		return "", errors.New("access denied")
	}))

	_, err := c.Command(ScopeSystem, windows, `C:\ikun`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read system PATH")
}

func TestCommand_Unix(t *testing.T) {
	c := New(zerolog.Nop(), &recordingRunner{}, WithHome("/home/ikun"))

	user, err := c.Command(ScopeUser, linux, "/work/ikun")
	require.NoError(t, err)
	assert.Equal(t, "sh", user.Name)
	assert.Equal(t, `printf '%s\n' 'export PATH="$PATH":/work/ikun' >> /home/ikun/.profile`, user.Args[1])

	system, err := c.Command(ScopeSystem, linux, "/work/ikun")
	require.NoError(t, err)
	assert.Equal(t, []string{"sudo", "sh", "-c"}, system.Argv()[:3])
	assert.Contains(t, system.Args[2], ">> /etc/profile")
}

func TestCommand_InvalidScope(t *testing.T) {
	c := New(zerolog.Nop(), &recordingRunner{}, WithHome("/home/ikun"))
	_, err := c.Command(Scope(9), linux, "/work")
	require.ErrorIs(t, err, ErrInvalidScope)
}

func TestConfigure_SingleCommandAndNoPrivilegeCheck(t *testing.T) {
	runner := &recordingRunner{code: 5}
	c := New(zerolog.Nop(), runner, WithHome("/home/ikun"), WithPathReader(pathsByScope("", hostPath)))

	code, err := c.Configure(ScopeSystem, windows, `D:\work\ikun`)
	require.NoError(t, err, "a non-zero exit is reported as a code, not an error")
	assert.Equal(t, 5, code)
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0].Args, "/M")
	assert.Equal(t, "setx", runner.calls[0].Name)
	assert.Contains(t, runner.calls[0].Args, `C:\Windows\system32;C:\Program Files\Git\cmd;D:\work\ikun`)
}

func TestConfigure_UserProfileIsAppended(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}

	home := t.TempDir()
	profile := filepath.Join(home, ".profile")
	require.NoError(t, os.WriteFile(profile, []byte("# existing\n"), 0o644))

	runner := execute.NewLocal(zerolog.Nop(), home, execute.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	c := New(zerolog.Nop(), runner, WithHome(home))

	code, err := c.Configure(ScopeUser, linux, "/opt/it's ikun")
	require.NoError(t, err)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(profile)
	require.NoError(t, err)
	assert.Equal(t, "# existing\nexport PATH=\"$PATH\":'/opt/it'\"'\"'s ikun'\n", string(data))
}
