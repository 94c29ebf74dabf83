// Package smssvc provides core.SMSService implementations. No SMS gateway is
// wired yet; the console service stands in for one and keeps the dispatch
// path exercised end to end.
package smssvc

import (
	"log"
	"sync"

	"github.com/wkarobia/cantera/core"
)

// SentMessages collects every message "sent" by the console services.
// Tests inspect it; guarded by mu.
var (
	SentMessages = make([]core.SMSMessage, 0)
	mu           sync.Mutex
)

func ClearSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}

type consoleService struct {
	disableOutput bool
}

var _ core.SMSService = (*consoleService)(nil)

func NewConsoleService() core.SMSService {
	return &consoleService{}
}

func (svc consoleService) SendMessages(messages ...*core.SMSMessage) error {
	for _, msg := range messages {
		if !svc.disableOutput {
			log.Printf("SMS to %s: %s", msg.To, msg.Body)
		}
		mu.Lock()
		SentMessages = append(SentMessages, *msg)
		mu.Unlock()
	}
	return nil
}

type consoleServiceMock struct {
	consoleService

	// Err, when set, is returned by SendMessages. Tests use it to exercise
	// the FAILED dispatch path.
	Err error
}

func NewConsoleServiceMock() *consoleServiceMock {
	return &consoleServiceMock{consoleService: consoleService{disableOutput: true}}
}

func (svc *consoleServiceMock) SendMessages(messages ...*core.SMSMessage) error {
	if svc.Err != nil {
		return svc.Err
	}
	return svc.consoleService.SendMessages(messages...)
}
