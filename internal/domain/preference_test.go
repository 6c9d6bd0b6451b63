package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryPreferenceChannels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pref       DeliveryPreference
		valid      bool
		wantsPush  bool
		wantsEmail bool
	}{
		{PreferenceNone, true, false, false},
		{PreferencePush, true, true, false},
		{PreferenceEmail, true, false, true},
		{PreferenceBoth, true, true, true},
		{DeliveryPreference("sms"), false, false, false},
		{DeliveryPreference(""), false, false, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.pref), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.valid, tc.pref.Valid())
			assert.Equal(t, tc.wantsPush, tc.pref.WantsPush())
			assert.Equal(t, tc.wantsEmail, tc.pref.WantsEmail())
		})
	}
}
