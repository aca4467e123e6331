package verify

import (
	"context"

	"go.viam.com/ecubench/catalog"
	"go.viam.com/ecubench/protocol"
)

// onIdentityFrame resolves the board from a status frame. Only the first matching frame of a run
// binds a board; an unknown board is reported once per run.
func (r *Receiver) onIdentityFrame(ctx context.Context, data [protocol.FrameSize]byte) {
	status := protocol.DecodeStatus(data)
	r.rc.secondsSinceReset.Store(status.SecondsSinceReset)
	r.rc.identityReceived.Store(true)

	if r.DisplayCANReceive {
		r.logger.Infof("CAN RX BoardStatus: BoardID=%d numSecs=%d", status.BoardID, status.SecondsSinceReset)
	}
	if r.rc.Resolved() != nil {
		return
	}

	cat := r.rc.Catalog()
	if cat == nil {
		return
	}
	board, rev, ok := cat.Lookup(status.BoardID)
	if !ok {
		if r.rc.identifyFailed.CompareAndSwap(false, true) {
			r.logger.Errorw("Error! Couldn't detect, unknown board!", "board_id", status.BoardID)
			r.rc.Fail()
		}
		return
	}

	res := &Resolution{Board: board, Revision: rev}
	if !r.rc.resolution.CompareAndSwap(nil, res) {
		return
	}
	r.logger.Infof("Board detected: %s rev.%s", board.Name, res.RevisionLetter())

	if board.DesiredEngineConfig == catalog.NoPreference || int(status.EngineType) == board.DesiredEngineConfig {
		return
	}
	if !r.rc.engineRequested.CompareAndSwap(false, true) {
		return
	}
	r.logger.Warnw("changing engine type", "from", status.EngineType, "to", board.DesiredEngineConfig)
	if err := r.sink.Send(ctx, protocol.EngineTypeRequest(uint8(board.DesiredEngineConfig))); err != nil {
		r.logger.Errorw("cannot request engine type", "error", err)
	}
}
