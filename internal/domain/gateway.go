package domain

import "strconv"

// Typed schemas for the payment gateway API. The gateway signals
// failure either by a non-2xx status or by an `errors` list in an
// otherwise 200 body, so every response type carries Errors.

// Money is a monetary amount sent to the gateway. It always serializes
// with exactly two decimal places (150 -> 150.00).
type Money float64

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(m), 'f', 2, 64)), nil
}

// GatewayError is one entry of a gateway `errors` list.
type GatewayError struct {
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// GatewayCustomer is the gateway-side customer record.
type GatewayCustomer struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CustomerPayload creates a customer at the gateway. Phone doubles as
// mobilePhone; document and postal code are digits only.
type CustomerPayload struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	MobilePhone       string `json:"mobilePhone"`
	CpfCnpj           string `json:"cpfCnpj"`
	PostalCode        string `json:"postalCode,omitempty"`
	Address           string `json:"address,omitempty"`
	AddressNumber     string `json:"addressNumber,omitempty"`
	Complement        string `json:"complement,omitempty"`
	Province          string `json:"province,omitempty"`
	ExternalReference string `json:"externalReference,omitempty"`
}

// CreditCardPayload is the raw card block sent on tokenization and,
// per gateway requirement, alongside the token on card charges.
type CreditCardPayload struct {
	HolderName  string `json:"holderName"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	Ccv         string `json:"ccv"`
}

// CreditCardHolderInfo mirrors the customer's identity and address in
// tokenization and card-charge payloads.
type CreditCardHolderInfo struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CpfCnpj       string `json:"cpfCnpj"`
	PostalCode    string `json:"postalCode"`
	AddressNumber string `json:"addressNumber,omitempty"`
	Complement    string `json:"addressComplement,omitempty"`
	Phone         string `json:"phone"`
	MobilePhone   string `json:"mobilePhone"`
}

// TokenizePayload exchanges raw card data for a reusable token.
type TokenizePayload struct {
	Customer             string               `json:"customer"`
	CreditCard           CreditCardPayload    `json:"creditCard"`
	CreditCardHolderInfo CreditCardHolderInfo `json:"creditCardHolderInfo"`
}

// SplitEntry routes a percentage of a charge or subscription to another
// wallet. Within one payload no two entries share a WalletID, and
// entries with an empty wallet or non-positive percentage are never
// added.
type SplitEntry struct {
	WalletID        string  `json:"walletId"`
	PercentualValue float64 `json:"percentualValue"`
	FixedValue      float64 `json:"fixedValue"`
}

// ChargePayload creates the one-time charge. Method-specific fields are
// set only for their billing type: ExpiresAfter/ExpiresDate for PIX,
// DaysAfterDueDateToRegistrationCancellation for BOLETO, the token plus
// raw card blocks for CREDIT_CARD.
type ChargePayload struct {
	Customer          string       `json:"customer"`
	BillingType       string       `json:"billingType"`
	Value             Money        `json:"value"`
	DueDate           string       `json:"dueDate"`
	Description       string       `json:"description,omitempty"`
	ExternalReference string       `json:"externalReference,omitempty"`
	Split             []SplitEntry `json:"split,omitempty"`

	ExpiresAfter *int   `json:"expiresAfter,omitempty"`
	ExpiresDate  string `json:"expiresDate,omitempty"`

	DaysAfterDueDateToRegistrationCancellation *int `json:"daysAfterDueDateToRegistrationCancellation,omitempty"`

	CreditCardToken      string                `json:"creditCardToken,omitempty"`
	CreditCard           *CreditCardPayload    `json:"creditCard,omitempty"`
	CreditCardHolderInfo *CreditCardHolderInfo `json:"creditCardHolderInfo,omitempty"`
}

// ChargeResponse is the gateway's view of a created charge.
type ChargeResponse struct {
	ID                    string         `json:"id"`
	Status                string         `json:"status"`
	BillingType           string         `json:"billingType"`
	Value                 float64        `json:"value"`
	DueDate               string         `json:"dueDate"`
	InvoiceURL            string         `json:"invoiceUrl"`
	BankSlipURL           string         `json:"bankSlipUrl"`
	TransactionReceiptURL string         `json:"transactionReceiptUrl"`
	Errors                []GatewayError `json:"errors,omitempty"`
}

// PixQrCode is the gateway-generated PIX QR artifact for a charge.
type PixQrCode struct {
	EncodedImage   string `json:"encodedImage"`
	Payload        string `json:"payload"`
	ExpirationDate string `json:"expirationDate"`
}

// SubscriptionPayload creates the recurring monthly premium.
type SubscriptionPayload struct {
	Customer          string       `json:"customer"`
	BillingType       string       `json:"billingType"`
	Value             Money        `json:"value"`
	NextDueDate       string       `json:"nextDueDate"`
	Cycle             string       `json:"cycle"`
	Description       string       `json:"description,omitempty"`
	ExternalReference string       `json:"externalReference,omitempty"`
	CreditCardToken   string       `json:"creditCardToken,omitempty"`
	Split             []SplitEntry `json:"split,omitempty"`
}

// SubscriptionResponse is the gateway's view of a created subscription.
type SubscriptionResponse struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Value       float64        `json:"value"`
	NextDueDate string         `json:"nextDueDate"`
	Errors      []GatewayError `json:"errors,omitempty"`
}
