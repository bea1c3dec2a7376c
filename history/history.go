/*
Package history records per-epoch training metrics into a SQLite table
so sessions can be compared after the fact
*/
package history

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"go-ml.dev/pkg/nnet/train"
	"go-ml.dev/pkg/zorros"
)

const schema = `
create table if not exists epochs (
	session      text not null,
	epoch        integer not null,
	train_loss   real not null,
	train_error  real not null,
	val_loss     real,
	val_error    real,
	test_loss    real,
	test_error   real,
	primary key (session, epoch)
)`

/*
Recorder is a train.Progress sink storing one row per completed epoch
*/
type Recorder struct {
	db      *sql.DB
	session string
	err     error
}

/*
Open creates or opens the history database; session names the training
run rows belong to
*/
func Open(path, session string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, zorros.Trace(err)
	}
	return &Recorder{db: db, session: session}, nil
}

func (r *Recorder) OnBatch(train.BatchProgress) {}

func (r *Recorder) OnEpoch(e train.EpochProgress) {
	var vl, ve, tl, te interface{}
	if e.Validation != nil {
		vl, ve = e.Validation.Loss, e.Validation.Error
	}
	if e.Test != nil {
		tl, te = e.Test.Loss, e.Test.Error
	}
	_, err := r.db.Exec(
		`insert or replace into epochs values (?,?,?,?,?,?,?,?)`,
		r.session, e.Epoch, e.Train.Loss, e.Train.Error, vl, ve, tl, te)
	if err != nil && r.err == nil {
		r.err = zorros.Trace(err)
	}
}

/*
Err is the first write failure if any; progress sinks cannot fail the
training session, so errors are kept for the caller to inspect
*/
func (r *Recorder) Err() error {
	return r.err
}

/*
Epochs reads back the recorded history of one session in epoch order
*/
func (r *Recorder) Epochs(session string) ([]train.EpochProgress, error) {
	rows, err := r.db.Query(
		`select epoch, train_loss, train_error, val_loss, val_error, test_loss, test_error
		 from epochs where session = ? order by epoch`, session)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	defer rows.Close()
	var history []train.EpochProgress
	for rows.Next() {
		var e train.EpochProgress
		var vl, ve, tl, te sql.NullFloat64
		if err = rows.Scan(&e.Epoch, &e.Train.Loss, &e.Train.Error, &vl, &ve, &tl, &te); err != nil {
			return nil, zorros.Trace(err)
		}
		if vl.Valid {
			e.Validation = &train.Metrics{Loss: vl.Float64, Error: ve.Float64}
		}
		if tl.Valid {
			e.Test = &train.Metrics{Loss: tl.Float64, Error: te.Float64}
		}
		history = append(history, e)
	}
	if err = rows.Err(); err != nil {
		return nil, zorros.Trace(err)
	}
	return history, nil
}

func (r *Recorder) Close() error {
	return r.db.Close()
}
