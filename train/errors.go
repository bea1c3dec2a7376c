package train

import (
	"golang.org/x/xerrors"
)

/*
Every precondition failure is a distinct condition raised before any
computation starts and before the session gate is touched. Match them
with xerrors.Is.
*/
var (
	ErrInvalidEpochCount         = xerrors.New("invalid epoch count")
	ErrInvalidDropoutRate        = xerrors.New("invalid dropout rate")
	ErrDatasetMismatch           = xerrors.New("dataset does not match")
	ErrUnsupportedImplementation = xerrors.New("unsupported implementation")
	ErrSessionConflict           = xerrors.New("a training session is already in progress")

	ErrInvalidEpsilon       = xerrors.New("invalid exploration rate")
	ErrInvalidDiscount      = xerrors.New("invalid discount factor")
	ErrInvalidBatchCapacity = xerrors.New("invalid batch capacity")
	ErrEnvironmentMismatch  = xerrors.New("environment does not match")
	ErrSessionClosed        = xerrors.New("training session is closed")
)
