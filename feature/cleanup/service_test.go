package cleanup

import (
	"context"
	"testing"
	"time"

	"photo-reconciler/core/index"
	"photo-reconciler/core/reconcile"
	"photo-reconciler/core/reconcile/mocks"
	"photo-reconciler/core/runlog"
	"photo-reconciler/core/utils"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	for _, dir := range []string{"/root/2020/01", "/root/2020/02/raw", "/root/2021", "/root/keep/empty"} {
		require.NoError(t, fs.MkdirAll(dir, 0755))
	}
	require.NoError(t, afero.WriteFile(fs, "/root/keep/photo.jpg", []byte("x"), 0644))
	return fs
}

func newService(fs afero.Fs, c reconcile.Confirmer, dryRun bool) *Service {
	clock := utils.FixedClock{T: time.Date(2024, 2, 2, 2, 2, 2, 0, time.UTC)}
	exec := reconcile.NewExecutor(fs, c, reconcile.ExecutorOptions{DryRun: dryRun}, nil)
	return NewService(fs, exec, runlog.NewWriter(fs, "/logs", clock, nil), nil)
}

// TestService_Run tests bottom-up removal that keeps the root and non-empty directories.
func TestService_Run(t *testing.T) {
	fs := fixture(t)
	c := new(mocks.Confirmer)
	c.On("Confirm", "[prune_empty] Remove 6 empty director(ies)?").Return(true).Once()

	res, err := newService(fs, c, false).Run(context.Background(), "/root")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/root/2020/01",
		"/root/2020/02/raw",
		"/root/2020/02",
		"/root/2020",
		"/root/2021",
		"/root/keep/empty",
	}, res.Empty)
	require.NotNil(t, res.Stage)
	assert.Equal(t, 6, res.Stage.Count(reconcile.OutcomeDeleted))
	assert.Equal(t, "/logs/prune_empty_log_20240202_020202.txt", res.Log)

	for path, want := range map[string]bool{
		"/root":            true,
		"/root/keep":       true,
		"/root/keep/empty": false,
		"/root/2020":       false,
		"/root/2021":       false,
	} {
		ok, err := afero.DirExists(fs, path)
		require.NoError(t, err)
		assert.Equal(t, want, ok, path)
	}
	c.AssertExpectations(t)
}

// TestService_Run_DryRun tests that a dry run only reports.
func TestService_Run_DryRun(t *testing.T) {
	fs := fixture(t)
	res, err := newService(fs, new(mocks.Confirmer), true).Run(context.Background(), "/root")
	require.NoError(t, err)

	assert.Len(t, res.Empty, 6)
	assert.Equal(t, 6, res.Stage.Count(reconcile.OutcomeSkipped))
	ok, _ := afero.DirExists(fs, "/root/2020/01")
	assert.True(t, ok)
}

// TestService_Run_EmptyRoot tests that an empty root is left alone.
func TestService_Run_EmptyRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/root", 0755))

	res, err := newService(fs, new(mocks.Confirmer), false).Run(context.Background(), "/root")
	require.NoError(t, err)
	assert.Empty(t, res.Empty)
	assert.Nil(t, res.Stage)

	ok, _ := afero.DirExists(fs, "/root")
	assert.True(t, ok)
}

// TestService_Run_MissingRoot tests that a missing root is fatal.
func TestService_Run_MissingRoot(t *testing.T) {
	_, err := newService(afero.NewMemMapFs(), reconcile.AutoConfirmer{}, false).Run(context.Background(), "/nope")
	assert.ErrorIs(t, err, index.ErrRootNotFound)
}
