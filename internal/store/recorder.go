package store

import (
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/oscars-th/internal/binding"
	"github.com/danielpatrickdp/oscars-th/internal/logging"
)

// #region record-call

// RecordCall writes one binding call to the call log. A successful
// dipole_spectrum result is also saved as a spectrum run, and its run ID is
// returned and logged with the call.
func (s *Store) RecordCall(method string, kwargs, result map[string]any, callErr error) (string, error) {
	entry := logging.CallEntry{Method: method}

	args, err := marshalOrEmpty(kwargs)
	if err != nil {
		return "", fmt.Errorf("record %s args: %w", method, err)
	}
	entry.ArgsJSON = args

	if callErr != nil {
		entry.Error = callErr.Error()
		entry.ErrorKind = binding.ErrorKind(callErr)
	} else {
		if entry.ResultJSON, err = marshalOrEmpty(result); err != nil {
			return "", fmt.Errorf("record %s result: %w", method, err)
		}
		if method == binding.DipoleSpectrum {
			sp, err := binding.DecodeSpectrum(result)
			if err != nil {
				return "", fmt.Errorf("record %s: %w", method, err)
			}
			rec, err := s.SaveRun(sp)
			if err != nil {
				return "", err
			}
			entry.RunID = rec.RunID
		}
	}

	if _, err := logging.LogCall(s.DB(), entry); err != nil {
		return entry.RunID, err
	}
	return entry.RunID, nil
}

// #endregion record-call

// marshalOrEmpty encodes m as JSON, spelling non-finite numbers as strings.
func marshalOrEmpty(m map[string]any) (string, error) {
	if m == nil {
		return "", nil
	}
	b, err := json.Marshal(binding.EncodeNonFinite(m))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
