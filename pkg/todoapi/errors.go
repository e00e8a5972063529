package todoapi

import (
	"context"
	"errors"

	xerrors "github.com/vango-dev/xbow/internal/errors"
	"github.com/vango-dev/xbow/pkg/dispatch"
	"github.com/vango-dev/xbow/pkg/track"
)

// classify maps err to the coded error the API answers with. An
// *xerrors.Error in the chain is used as is.
func classify(err error) *xerrors.Error {
	if err == nil {
		return nil
	}
	var e *xerrors.Error
	if errors.As(err, &e) {
		return e
	}

	code := xerrors.CodeInternal
	switch {
	case errors.Is(err, track.ErrBorrowConflict):
		code = xerrors.CodeBorrowConflict
	case errors.Is(err, track.ErrInvalidPath):
		code = xerrors.CodeInvalidPath
	case errors.Is(err, dispatch.ErrActionPanic):
		code = xerrors.CodeActionPanic
	case errors.Is(err, dispatch.ErrClosed):
		code = xerrors.CodeLoopClosed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = xerrors.CodeCanceled
	}
	return xerrors.New(code).Wrap(err)
}
