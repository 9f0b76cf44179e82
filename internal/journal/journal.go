// Package journal keeps a bbolt log of runs, transfer outcomes and the last catalog resolved for each course, so
// that reruns can report what changed upstream.
package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/r3labs/diff/v3"
	"go.etcd.io/bbolt"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/download"
	"github.com/alanbriolat/course-archiver/generic"
)

var Buckets = struct {
	Metadata  []byte
	Runs      []byte
	Transfers []byte
	Catalogs  []byte
}{
	Metadata:  []byte("__metadata__"),
	Runs:      []byte("runs"),
	Transfers: []byte("transfers"),
	Catalogs:  []byte("catalogs"),
}

var MetadataKeys = struct {
	Version []byte
}{
	Version: []byte("version"),
}

const currentVersion = 1

// A Run is one invocation of the archiver.
type Run struct {
	ID        string    `json:"id"`
	Course    string    `json:"course"`
	Mechanism string    `json:"mechanism"`
	Types     []string  `json:"types"`
	Started   time.Time `json:"started"`
}

// An Entry is the latest outcome recorded for one file.
type Entry struct {
	RunID string `json:"run_id"`
	download.Record
}

type Journal struct {
	db    *bbolt.DB
	runID string
}

// Open opens or creates the journal file. Each Journal gets a fresh run ID.
func Open(path string) (_ *Journal, err error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: journal: %v", course_archiver.ErrPrecondition, err)
	}
	err = db.Update(func(tx *bbolt.Tx) (err error) {
		// Ensure buckets exist
		var metadata *bbolt.Bucket
		if metadata, err = tx.CreateBucketIfNotExists(Buckets.Metadata); err != nil {
			return err
		}
		for _, name := range [][]byte{Buckets.Runs, Buckets.Transfers, Buckets.Catalogs} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		// Check the version of the journal
		var version int
		if versionBytes := metadata.Get(MetadataKeys.Version); versionBytes == nil {
			version = 0
		} else if err = json.Unmarshal(versionBytes, &version); err != nil {
			return err
		}
		if version > currentVersion {
			return fmt.Errorf("journal version %d is newer than supported version %d", version, currentVersion)
		}

		if versionBytes, err := json.Marshal(currentVersion); err != nil {
			return err
		} else if err = metadata.Put(MetadataKeys.Version, versionBytes); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: journal: %v", course_archiver.ErrPrecondition, err)
	}
	return &Journal{db: db, runID: generic.Unwrap(uuid.NewRandom()).String()}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) RunID() string {
	return j.runID
}

func put(tx *bbolt.Tx, bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return tx.Bucket(bucket).Put([]byte(key), data)
}

// StartRun records the parameters of the current run.
func (j *Journal) StartRun(course string, mechanism string, types []string) error {
	run := Run{
		ID:        j.runID,
		Course:    course,
		Mechanism: mechanism,
		Types:     types,
		Started:   time.Now().UTC(),
	}
	return j.db.Update(func(tx *bbolt.Tx) error {
		return put(tx, Buckets.Runs, run.ID, run)
	})
}

func (j *Journal) ListRuns() (runs []Run, err error) {
	err = j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(Buckets.Runs).ForEach(func(k, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return err
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func transferKey(dir string, title string) string {
	return dir + "\x00" + title
}

// Record implements download.Recorder, replacing any earlier outcome for the same file.
func (j *Journal) Record(record download.Record) error {
	entry := Entry{RunID: j.runID, Record: record}
	return j.db.Update(func(tx *bbolt.Tx) error {
		return put(tx, Buckets.Transfers, transferKey(record.Dir, record.Title), entry)
	})
}

// Lookup returns the latest outcome for a title in a directory.
func (j *Journal) Lookup(dir string, title string) (entry Entry, found bool, err error) {
	err = j.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(Buckets.Transfers).Get([]byte(transferKey(dir, title)))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	return entry, found, err
}

// Failures lists every file whose latest outcome is a failure.
func (j *Journal) Failures() (entries []Entry, err error) {
	err = j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(Buckets.Transfers).ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			if entry.Outcome == download.Failed {
				entries = append(entries, entry)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func catalogKey(course string, mechanism string) string {
	return course + "/" + mechanism
}

// SaveCatalog stores the resolved collection and returns its changes since the previous save for the same course
// and mechanism. Types that were not resolved this time are left as they were.
func (j *Journal) SaveCatalog(course string, mechanism string, collection course_archiver.VideoTypeCollection) (changes diff.Changelog, err error) {
	err = j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(Buckets.Catalogs)
		key := []byte(catalogKey(course, mechanism))
		stored := course_archiver.VideoTypeCollection{}
		if data := bucket.Get(key); data != nil {
			if err := json.Unmarshal(data, &stored); err != nil {
				return err
			}
		}
		previous := course_archiver.VideoTypeCollection{}
		for t := range collection {
			if seq, ok := stored[t]; ok {
				previous[t] = seq
			}
		}
		if changes, err = diff.Diff(previous, collection); err != nil {
			return fmt.Errorf("failed to diff catalog: %w", err)
		}
		for t, seq := range collection {
			stored[t] = seq
		}
		return put(tx, Buckets.Catalogs, string(key), stored)
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}
