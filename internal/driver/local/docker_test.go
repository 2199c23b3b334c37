package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/contestflow/internal/driver"
	"github.com/vk/contestflow/internal/driver/mock"
)

func TestDockerArgv(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		build func(string, driver.DockerOp) []string
		op    driver.DockerOp
		want  []string
	}{
		{
			name:  "run with options",
			build: RunArgv,
			op: driver.DockerOp{
				Container: "judge",
				Image:     "python:3.12",
				Command:   []string{"sleep", "infinity"},
				Options: map[string]string{
					OptDetach:  "true",
					OptVolumes: "/src:/work, /cache:/cache",
					OptWorkdir: "/work",
					OptTTY:     "false",
				},
			},
			want: []string{"docker", "run", "--name", "judge", "-d", "-v", "/src:/work", "-v", "/cache:/cache", "-w", "/work", "python:3.12", "sleep", "infinity"},
		},
		{
			name:  "exec with stdin forces interactive",
			build: ExecArgv,
			op:    driver.DockerOp{Container: "judge", Command: []string{"python3", "main.py"}, Stdin: "1 2\n"},
			want:  []string{"docker", "exec", "-i", "judge", "python3", "main.py"},
		},
		{
			name:  "build defaults the context path",
			build: BuildArgv,
			op:    driver.DockerOp{Options: map[string]string{OptTag: "judge:latest", OptNoCache: "1"}},
			want:  []string{"docker", "build", "-t", "judge:latest", "--no-cache", "."},
		},
		{
			name:  "stop with timeout",
			build: StopArgv,
			op:    driver.DockerOp{Container: "judge", Options: map[string]string{OptTimeout: "5"}},
			want:  []string{"docker", "stop", "-t", "5", "judge"},
		},
		{
			name:  "forced remove",
			build: RemoveArgv,
			op:    driver.DockerOp{Container: "judge", Options: map[string]string{OptForce: "true"}},
			want:  []string{"docker", "rm", "-f", "judge"},
		},
		{
			name:  "ps all with filter",
			build: PsArgv,
			op:    driver.DockerOp{Options: map[string]string{OptAll: "true", OptFilter: "name=judge"}},
			want:  []string{"docker", "ps", "-a", "--filter", "name=judge"},
		},
		{
			name:  "inspect falls back to the image",
			build: InspectArgv,
			op:    driver.DockerOp{Image: "python:3.12"},
			want:  []string{"docker", "inspect", "python:3.12"},
		},
		{
			name:  "cp",
			build: CpArgv,
			op:    driver.DockerOp{Command: []string{"main.py", "judge:/work/main.py"}},
			want:  []string{"docker", "cp", "main.py", "judge:/work/main.py"},
		},
		{
			name:  "logs tail",
			build: LogsArgv,
			op:    driver.DockerOp{Container: "judge", Options: map[string]string{OptTail: "10"}},
			want:  []string{"docker", "logs", "--tail", "10", "judge"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.build("docker", tc.op))
		})
	}
}

func TestDocker_RunReusesRunningContainer(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	backend := mock.New().On("docker inspect --format {{.State.Status}} judge", driver.Result{Stdout: "running\n"})
	d := NewDocker(backend.Set().Shell)

	// --- Act ---
	res, err := d.Run(context.Background(), driver.DockerOp{Container: "judge", Image: "python:3.12"})

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, []string{"docker inspect --format {{.State.Status}} judge"}, backend.Keys())
}

func TestDocker_RunRemovesStoppedContainer(t *testing.T) {
	t.Parallel()

	backend := mock.New().On("docker inspect --format {{.State.Status}} judge", driver.Result{Stdout: "exited\n"})
	d := NewDocker(backend.Set().Shell)

	_, err := d.Run(context.Background(), driver.DockerOp{Container: "judge", Image: "python:3.12"})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"docker inspect --format {{.State.Status}} judge",
		"docker rm -f judge",
		"docker run --name judge python:3.12",
	}, backend.Keys())
}

func TestDocker_RunsUnnamedContainerDirectly(t *testing.T) {
	t.Parallel()

	backend := mock.New()
	d := &Docker{Shell: backend.Set().Shell, Binary: "podman"}

	_, err := d.Exec(context.Background(), driver.DockerOp{Container: "judge", Command: []string{"ls"}})
	require.NoError(t, err)
	_, err = d.Run(context.Background(), driver.DockerOp{Image: "alpine"})
	require.NoError(t, err)

	assert.Equal(t, []string{"podman exec judge ls", "podman run alpine"}, backend.Keys())
}

func TestNewSet(t *testing.T) {
	set := NewSet(t.TempDir())
	require.NotNil(t, set.File)
	require.NotNil(t, set.Shell)
	require.NotNil(t, set.Docker)
}
