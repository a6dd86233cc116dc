package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDocumentRequiresAllCollections(t *testing.T) {
	cases := map[string]string{
		"categories":     `{"paymentMethods":[],"transactions":[],"userConfig":{}}`,
		"paymentMethods": `{"categories":[],"transactions":[],"userConfig":{}}`,
		"transactions":   `{"categories":[],"paymentMethods":[],"userConfig":{}}`,
		"userConfig":     `{"categories":[],"paymentMethods":[],"transactions":[]}`,
		"null":           `{"categories":null,"paymentMethods":[],"transactions":[],"userConfig":{}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDocument(strings.NewReader(body))
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
}

func TestDecodeDocumentRejectsGarbageAndNewerVersions(t *testing.T) {
	_, err := DecodeDocument(strings.NewReader(`{not json`))
	assert.True(t, IsValidation(err))

	_, err = DecodeDocument(strings.NewReader(`{"version":99,"categories":[],"paymentMethods":[],"transactions":[],"userConfig":{}}`))
	assert.True(t, IsValidation(err))
}

func TestDocumentEncodeDecode(t *testing.T) {
	catID := int64(5)
	doc := Document{
		Version:        DocumentVersion,
		Categories:     []Category{{ID: 5, Name: "A", IconName: "tag"}},
		PaymentMethods: []PaymentMethod{},
		Transactions: []Transaction{{
			ID: 1, Date: NewDate(2025, 1, 2), Value: dec("-9.90"), Type: Expense,
			Condition: Paid, Installments: 1, CategoryID: &catID,
		}},
		UserConfig: &UserConfig{ID: UserConfigID, CompanyName: "ACME", InitialBalance: dec("10")},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeDocument(&buf, doc))
	assert.Contains(t, buf.String(), `"paymentMethods": []`)
	assert.Contains(t, buf.String(), `"category_id": 5`)

	got, err := DecodeDocument(&buf)
	require.NoError(t, err)
	require.Len(t, got.Transactions, 1)
	assert.True(t, got.Transactions[0].Value.Equal(dec("-9.9")))
	assert.Equal(t, int64(5), *got.Transactions[0].CategoryID)
	assert.Nil(t, got.Transactions[0].PaymentMethodID)
	assert.Equal(t, "ACME", got.UserConfig.CompanyName)
}
