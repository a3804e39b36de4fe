package history

import "time"

// Status classifies how a commit touched a path. Renames and type changes
// collapse to StatusModified; rename-origin information is discarded.
type Status int

const (
	StatusUnchanged Status = iota
	StatusAdded
	StatusModified
	StatusDeleted
)

func (s Status) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusModified:
		return "modified"
	case StatusDeleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// CommitRecord is one commit in a file's log. Identity is the hash.
type CommitRecord struct {
	Hash        string
	Date        time.Time
	Message     string
	Author      string
	AuthorEmail string
}

// ChangedFile is one repo-relative, slash-normalized path a commit touched.
type ChangedFile struct {
	Path   string
	Status Status
}

// FileState disambiguates the two reasons FileContent can return "".
type FileState int

const (
	// FileAbsent means the path did not exist at that revision.
	FileAbsent FileState = iota
	// FileEmpty means the path existed and held zero bytes.
	FileEmpty
	// FilePresent means the path existed with content.
	FilePresent
)
