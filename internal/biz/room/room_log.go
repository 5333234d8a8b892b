package room

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yola1107/cardduel/internal/biz/card"
	"github.com/yola1107/cardduel/internal/biz/player"
	"github.com/yola1107/cardduel/internal/conf"
	"github.com/yola1107/cardduel/library/log/file"
)

const logFileName = "room_%s.log"

// Log is the per-room match journal. Writes are dropped unless log_cache.open is set.
type Log struct {
	c      *conf.Room_LogCache
	roomID string
	logger *file.Log
}

func NewRoomLog(roomID string, c *conf.Room_LogCache) *Log {
	if c == nil {
		c = &conf.Room_LogCache{}
	}
	dir := c.Directory
	if dir == "" {
		dir = "./logs/log_cache"
	}
	return &Log{
		c:      c,
		roomID: roomID,
		logger: file.NewFileLog(filepath.Join(dir, conf.Name, fmt.Sprintf(logFileName, roomID))),
	}
}

func (l *Log) Close() error {
	return l.logger.Close()
}

func (l *Log) write(msg string, args ...any) {
	if !l.c.Open {
		return
	}
	l.logger.WriteLog("[%s] "+msg, append([]any{l.roomID}, args...)...)
}

func (l *Log) userEnter(p *player.Player, cnt int) {
	l.write("[enter] player:%s players(%d)", p.Desc(), cnt)
}

func (l *Log) userExit(p *player.Player, cnt int) {
	l.write("[exit] player:%s players(%d)", p.Desc(), cnt)
}

func (l *Log) dealHand(p *player.Player, round int32, hand []card.Card) {
	l.write("[deal] round:%d player:%s hand:%s deck:%d discard:%d",
		round, p.GetPlayerID(), joinCards(hand), p.GetDeck().Len(), p.GetDeck().DiscardLen())
}

func (l *Log) submit(p *player.Player, round int32, seq []card.Card) {
	l.write("[submit] round:%d player:%s picks:%s", round, p.GetPlayerID(), joinCards(seq))
}

func (l *Log) reveal(round int32, p1, p2 []card.Card) {
	l.write("[reveal] round:%d p1:%s p2:%s", round, joinCards(p1), joinCards(p2))
}

func (l *Log) result(round int32, p1, p2 *player.Player) {
	l.write("[result] round:%d p1:%s hp:%d p2:%s hp:%d",
		round, p1.GetPlayerID(), p1.GetHP(), p2.GetPlayerID(), p2.GetHP())
}

func (l *Log) gameOver(round int32, result string) {
	l.write("[game over] round:%d result:%s", round, result)
}

func (l *Log) rematch(round int32) {
	l.write("[rematch] previous round:%d", round)
}

func joinCards(cards []card.Card) string {
	return "[" + strings.Join(card.Strings(cards), ",") + "]"
}
