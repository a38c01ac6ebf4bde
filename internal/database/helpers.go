package database

import "database/sql"

// execRequireRows validates that an ExecContext result affected at least one
// row. Returns err if non-nil, or zeroRowsErr if nothing was affected.
func execRequireRows(result sql.Result, err, zeroRowsErr error) error {
	if err != nil {
		return err
	}
	n, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return affectedErr
	}
	if n == 0 {
		return zeroRowsErr
	}
	return nil
}

// execRowsAffected reports whether an ExecContext result affected any rows.
func execRowsAffected(result sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return false, affectedErr
	}
	return n > 0, nil
}
