package room

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

// Client-facing failures. The message is sent verbatim in the error frame.
var (
	ErrInvalidJSON      = errors.BadRequest("INVALID_JSON", "Invalid JSON payload.")
	ErrMissingType      = errors.BadRequest("MISSING_TYPE", "Missing message type.")
	ErrRoomExists       = errors.Conflict("ROOM_EXISTS", "Room already exists for this connection.")
	ErrNameRequired     = errors.BadRequest("NAME_REQUIRED", "Player name is required.")
	ErrRoomIDRequired   = errors.BadRequest("ROOM_ID_REQUIRED", "Room ID is required.")
	ErrIDsRequired      = errors.BadRequest("IDS_REQUIRED", "Room ID and player ID are required.")
	ErrRoomNotFound     = errors.NotFound("ROOM_NOT_FOUND", "Room not found.")
	ErrRoomFinished     = errors.Conflict("ROOM_FINISHED", "Room already finished.")
	ErrRoomFull         = errors.Conflict("ROOM_FULL", "Room is full.")
	ErrPlayerExists     = errors.Conflict("PLAYER_EXISTS", "Player already in room.")
	ErrRoundMismatch    = errors.Conflict("ROUND_MISMATCH", "Round mismatch.")
	ErrNotInRoom        = errors.Forbidden("NOT_IN_ROOM", "Player not in room.")
	ErrBotAction        = errors.Forbidden("BOT_ACTION", "Bot action is not allowed.")
	ErrAlreadySubmitted = errors.Conflict("ALREADY_SUBMITTED", "Cards already submitted.")
	ErrAwaitingConfirm  = errors.Conflict("AWAITING_CONFIRM", "Round is awaiting confirmation.")
	ErrGameFinished     = errors.Conflict("GAME_FINISHED", "Game is already finished.")
	ErrNotAwaiting      = errors.Conflict("NOT_AWAITING_CONFIRM", "Round is not awaiting confirmation.")
	ErrInvalidPlayer    = errors.Forbidden("INVALID_PLAYER", "Invalid player.")
	ErrRematchPlaying   = errors.Conflict("REMATCH_PLAYING", "Rematch is only available after game over.")
	ErrNoRoomID         = errors.ServiceUnavailable("NO_ROOM_ID", "No room ID available.")

	ErrDuplicatePick = errors.BadRequest("DUPLICATE_PICK", "Duplicate card selections are not allowed.")
	ErrIndexRange    = errors.BadRequest("INDEX_OUT_OF_RANGE", "Card index out of range.")
	ErrInvalidCard   = errors.BadRequest("INVALID_CARD", "Invalid card type.")
	ErrExceedHand    = errors.BadRequest("EXCEED_HAND", "Selected cards exceed hand count.")
	ErrInvalidPicks  = errors.BadRequest("INVALID_PICKS", "Invalid picks format.")
)

const (
	reasonPickCount   = "PICK_COUNT"
	reasonUnknownType = "UNKNOWN_TYPE"
)

// ErrPickCount reports a submission of the wrong length.
func ErrPickCount(n int) *errors.Error {
	return errors.BadRequest(reasonPickCount, fmt.Sprintf("Must submit %d cards.", n))
}

// ErrUnknownType reports an unsupported message type.
func ErrUnknownType(typ string) *errors.Error {
	return errors.BadRequest(reasonUnknownType, "Unknown message type: "+typ)
}

// Message extracts the client-facing text of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return errors.FromError(err).GetMessage()
}
