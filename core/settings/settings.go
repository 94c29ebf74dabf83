package settings

import (
	"sync"

	"github.com/wkarobia/cantera/core"
)

// Settings holds academy-wide preferences.
type Settings struct {
	AcademyName         string `json:"academy_name"`
	ContactEmail        string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone        string `json:"contact_phone"`
	EmailNotifications  bool   `json:"email_notifications"`
	SMSNotifications    bool   `json:"sms_notifications"`
	PaymentDueDays      int    `json:"payment_due_days" validate:"min=0"`
	OverdueReminderDays int    `json:"overdue_reminder_days" validate:"min=0"`
}

func (s *Settings) Validate() error {
	s.AcademyName = core.CleanString(s.AcademyName)
	s.ContactEmail = core.CleanString(s.ContactEmail, true /* lower */)
	s.ContactPhone = core.CleanString(s.ContactPhone)
	return core.Validate.Struct(s)
}

// Store owns the settings for one process. It is explicitly constructed and
// injected, not package state. Values live in memory only: they are lost on
// restart and are not shared across instances. Known limitation.
type Store struct {
	mu       sync.RWMutex
	settings Settings
}

// NewStore seeds a Store with defaults derived from conf.
func NewStore(conf *core.Config) *Store {
	return &Store{
		settings: Settings{
			AcademyName:         conf.AppName,
			ContactEmail:        conf.DefaultFromEmail.Address,
			EmailNotifications:  true,
			SMSNotifications:    false,
			PaymentDueDays:      14,
			OverdueReminderDays: 7,
		},
	}
}

func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings
}

func (st *Store) Put(s Settings) Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.settings = s
	return st.settings
}
