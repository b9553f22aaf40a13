package contact

import (
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/ts4z/brochure/i18n"
	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/textutil"
)

// MinMessageLen is counted in characters after trimming.
const MinMessageLen = 10

// emailPattern is deliberately loose: something@something.something with
// no whitespace and a single @ on either side of the dot.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate checks every field and collects all failures.
func Validate(sub model.ContactSubmission, msgs i18n.ContactMessages) model.FieldErrors {
	sub = sub.Trimmed()
	errs := model.FieldErrors{}

	if sub.Name == "" {
		errs[model.FieldName] = msgs.NameRequired
	}

	switch {
	case sub.Email == "":
		errs[model.FieldEmail] = msgs.EmailRequired
	case !ValidEmail(sub.Email):
		errs[model.FieldEmail] = msgs.EmailInvalid
	}

	switch {
	case sub.Message == "":
		errs[model.FieldMessage] = msgs.MessageRequired
	case textutil.RuneLen(sub.Message) < MinMessageLen:
		errs[model.FieldMessage] = msgs.MessageTooShort
	}

	return errs
}

// Digest identifies a submitter in logs without writing their address.
func Digest(email string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:8])
}
