// Package repository implements the MySQL persistence layer.  Sentinel
// errors here let the service layer tell a missing row from a constraint
// violation without inspecting driver errors.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a unique constraint,
// such as a second review of the same tour by the same user.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by UserRepo.Create for a taken email.
var ErrEmailExists = errors.New("email already exists")

const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is MySQL's duplicate-key error.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// rowErr maps sql.ErrNoRows to ErrNotFound.
func rowErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// affected turns a zero-row update or delete into ErrNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
