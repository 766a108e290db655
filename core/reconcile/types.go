package reconcile

import (
	"errors"
	"time"

	"photo-reconciler/core/index"
)

var (
	// ErrNameCollision is reported when a destination path is already occupied.
	ErrNameCollision = errors.New("destination already exists")
	// ErrAmbiguousMatch is reported for keys with more than one candidate on either side.
	ErrAmbiguousMatch = errors.New("ambiguous match")
	// ErrBackupFailed is reported when a destination could not be backed up before an overwrite.
	ErrBackupFailed = errors.New("backup failed")
)

// Status classifies a single key after comparing two indexes.
type Status string

const (
	// StatusIdentical means one record per side with equal sizes.
	StatusIdentical Status = "identical"
	// StatusSizeMismatch means one record per side with different sizes.
	StatusSizeMismatch Status = "size_mismatch"
	// StatusDuplicateGroup means more than one record on either side; never compared.
	StatusDuplicateGroup Status = "duplicate_group"
	// StatusOnlyInA means the key exists only in the first index.
	StatusOnlyInA Status = "only_in_a"
	// StatusOnlyInB means the key exists only in the second index.
	StatusOnlyInB Status = "only_in_b"
	// StatusMatched means a timestamp key has exactly one source and one destination.
	StatusMatched Status = "matched"
	// StatusAmbiguous means a timestamp key has several candidates on either side.
	StatusAmbiguous Status = "ambiguous"
	// StatusNoCounterpart means a source timestamp key has no destination.
	StatusNoCounterpart Status = "no_counterpart"
)

// MatchResult is the outcome for one key. A holds the first (source) side, B the
// second (destination) side.
type MatchResult struct {
	Key      string             `yaml:"key"`
	Status   Status             `yaml:"status"`
	A        []index.FileRecord `yaml:"a,omitempty"`
	B        []index.FileRecord `yaml:"b,omitempty"`
	SizeDiff int64              `yaml:"size_diff,omitempty"`
}

// Err returns ErrAmbiguousMatch for results that need manual resolution, nil otherwise.
func (r MatchResult) Err() error {
	if r.Status == StatusDuplicateGroup || r.Status == StatusAmbiguous {
		return ErrAmbiguousMatch
	}
	return nil
}

// Summary provides aggregate counts for a name comparison.
type Summary struct {
	// FilesA and FilesB count every keyed file on each side, duplicates included.
	FilesA int `yaml:"files_a"`
	FilesB int `yaml:"files_b"`

	// CommonKeys counts keys present on both sides.
	CommonKeys int `yaml:"common_keys"`

	Identical       int `yaml:"identical"`
	SizeMismatches  int `yaml:"size_mismatches"`
	DuplicateGroups int `yaml:"duplicate_groups"`
	OnlyInA         int `yaml:"only_in_a"`
	OnlyInB         int `yaml:"only_in_b"`
}

// Comparison is the result of comparing two indexes by name.
type Comparison struct {
	RootA   string        `yaml:"root_a"`
	RootB   string        `yaml:"root_b"`
	Summary Summary       `yaml:"summary"`
	Results []MatchResult `yaml:"results"`
}

// TimestampSummary provides aggregate counts for a timestamp match.
type TimestampSummary struct {
	Sources       int `yaml:"sources"`
	Destinations  int `yaml:"destinations"`
	Matched       int `yaml:"matched"`
	Ambiguous     int `yaml:"ambiguous"`
	NoCounterpart int `yaml:"no_counterpart"`
	// Unkeyed counts source files whose name does not follow the timestamp pattern.
	Unkeyed int `yaml:"unkeyed"`
}

// TimestampMatch is the result of matching source files to destination files by timestamp key.
type TimestampMatch struct {
	Summary TimestampSummary `yaml:"summary"`
	Results []MatchResult    `yaml:"results"`
}

// ActionType represents the type of filesystem mutation.
type ActionType string

const (
	// ActionMoveUnique moves a file to a destination path that must be free.
	ActionMoveUnique ActionType = "move_unique"
	// ActionMoveWithRename moves a file into a directory under a collision-free name.
	ActionMoveWithRename ActionType = "move_with_rename"
	// ActionOverwriteIfBetter backs up the destination and copies the source over it.
	ActionOverwriteIfBetter ActionType = "overwrite_if_better"
	// ActionDeleteSource removes the source once its counterpart is confirmed present.
	ActionDeleteSource ActionType = "delete_source"
	// ActionWriteCaptureTime writes a capture date into the source's metadata.
	ActionWriteCaptureTime ActionType = "write_capture_time"
	// ActionRemoveEmptyDir removes a directory that is still empty when applied.
	ActionRemoveEmptyDir ActionType = "remove_empty_dir"
)

// Action represents a planned mutation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `yaml:"type"`

	// Source is the file being moved, copied or deleted.
	Source index.FileRecord `yaml:"source"`

	// Target is the destination-side counterpart, when there is one.
	Target index.FileRecord `yaml:"target,omitempty"`

	// Destination is the target path for MoveUnique and OverwriteIfBetter, the target
	// directory for MoveWithRename, and the counterpart path for DeleteSource.
	Destination string `yaml:"destination"`

	// Reason explains why this action is needed.
	Reason string `yaml:"reason"`

	// SourceTags and TargetTags carry tag counts for OverwriteIfBetter.
	SourceTags int `yaml:"source_tags,omitempty"`
	TargetTags int `yaml:"target_tags,omitempty"`

	// CaptureTime is the date written by ActionWriteCaptureTime.
	CaptureTime time.Time `yaml:"capture_time,omitempty"`
}

// OutcomeStatus is the terminal state of one action.
type OutcomeStatus string

const (
	OutcomeMoved   OutcomeStatus = "moved"
	OutcomeDeleted OutcomeStatus = "deleted"
	OutcomeUpdated OutcomeStatus = "updated"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// ActionOutcome records what happened to one action.
type ActionOutcome struct {
	Action      Action
	Status      OutcomeStatus
	Source      string
	Destination string
	// Backup is where the previous destination was moved, for overwrites.
	Backup string
	Reason string
	Err    error
}

// StageResult collects the outcomes of one confirmed application of a plan.
type StageResult struct {
	Stage    string
	DryRun   bool
	Declined bool
	Planned  int
	Outcomes []ActionOutcome
}

// Count returns the number of outcomes with the given status.
func (r StageResult) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Policy controls how reconciliation actions are applied.
type Policy struct {
	// DryRun reports what would happen without touching the filesystem.
	DryRun bool `mapstructure:"dry_run" toml:"dry_run" default:"false"`
	// AutoConfirm answers yes to every stage prompt.
	AutoConfirm bool `mapstructure:"auto_confirm" toml:"auto_confirm" default:"false"`
	// RenameSuffix is appended to the stem by MoveWithRename.
	RenameSuffix string `mapstructure:"rename_suffix" toml:"rename_suffix" default:"_from_source"`
	// BackupPrefix names the per-run backup directory: <prefix>_<YYYYmmdd_HHMMSS>.
	BackupPrefix string `mapstructure:"backup_prefix" toml:"backup_prefix" default:"overwrite_backup"`
	// PreserveTree keeps the source-relative directory when moving files that are
	// missing from the destination. Off means a flat destination.
	PreserveTree bool `mapstructure:"preserve_tree" toml:"preserve_tree" default:"false"`
}
