package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilePathRejectsTraversal(t *testing.T) {
	err := ValidateFilePath("data/../../../etc/passwd")
	assert.Error(t, err)
}

func TestValidateFilePathAcceptsDottedFileName(t *testing.T) {
	err := ValidateFilePath("data/file.backup.parquet")
	assert.NoError(t, err)
}

func TestValidateFilePathRejectsAbsolute(t *testing.T) {
	assert.Error(t, ValidateFilePath("/etc/passwd"))
	assert.Error(t, ValidateFilePath(`\windows\system32`))
}

func TestValidateDatabaseIDRejectsDots(t *testing.T) {
	err := ValidateDatabaseID("db.123")
	assert.Error(t, err)
}

func TestValidateDatabaseIDAcceptsSimpleID(t *testing.T) {
	assert.NoError(t, ValidateDatabaseID("db-123_prod"))
}

func TestValidateURLParameterRejectsEmpty(t *testing.T) {
	assert.Error(t, ValidateURLParameter("   ", "name"))
}

func TestValidateURLParameterRejectsNullByte(t *testing.T) {
	assert.Error(t, ValidateURLParameter("abc\x00def", "name"))
	assert.Error(t, ValidateURLParameter("abc%00def", "name"))
}

func TestValidateURLParameterRejectsEncodedTraversal(t *testing.T) {
	assert.Error(t, ValidateURLParameter("%2e%2e%2fetc%2fpasswd", "name"))
	assert.Error(t, ValidateURLParameter("%252e%252e/etc", "name"))
}

func TestValidateURLParameterAcceptsOrdinaryValue(t *testing.T) {
	assert.NoError(t, ValidateURLParameter("orders-2024", "name"))
}
