// Package domain holds the core types of the checkout service:
// checkout request/result DTOs, gateway payload schemas, affiliate
// and plan models, and the typed errors shared by all layers.
package domain

import "encoding/json"

// PaymentMethod is the billing type selected in the lead flow.
const (
	PaymentMethodPix        = "PIX"
	PaymentMethodBoleto     = "BOLETO"
	PaymentMethodCreditCard = "CREDIT_CARD"
)

// Checkout result statuses. A checkout where the charge succeeded but the
// subscription did not is "partial", never an error.
const (
	CheckoutStatusComplete = "complete"
	CheckoutStatusPartial  = "partial"
)

// CheckoutRequest is the inbound payload of POST /v1/checkout.
// FinalValue is a json.Number so that both `150.00` and `"150.00"`
// are accepted; anything non-numeric fails validation.
type CheckoutRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"cpfCnpj"`

	PostalCode    string `json:"postalCode"`
	Address       string `json:"address"`
	AddressNumber string `json:"addressNumber"`
	Complement    string `json:"complement,omitempty"`
	Province      string `json:"province,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`

	// ExternalReference is the id of the referring affiliate.
	ExternalReference string `json:"externalReference"`

	Plano            *InsurancePlan    `json:"plano,omitempty"`
	SelectedServices []SelectedService `json:"selectedServices,omitempty"`
	Discount         float64           `json:"discount,omitempty"`
	FinalValue       json.Number       `json:"finalValue"`

	PaymentMethod string      `json:"paymentMethod"`
	CreditCard    *CreditCard `json:"creditCard,omitempty"`

	Vehicle *Vehicle `json:"vehicle,omitempty"`
}

// CreditCard is the raw card block required for CREDIT_CARD checkouts.
// Content validation is delegated to the gateway; only structure is
// checked here.
type CreditCard struct {
	HolderName  string `json:"holderName"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	Ccv         string `json:"ccv"`
}

// Vehicle identifies the insured vehicle, forwarded to the inspection
// (vistoria) service after payment creation.
type Vehicle struct {
	Plate string `json:"plate,omitempty"`
	Brand string `json:"brand,omitempty"`
	Model string `json:"model,omitempty"`
	Year  string `json:"year,omitempty"`
}

// SelectedService is an optional add-on picked during the lead flow.
type SelectedService struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CheckoutResult is the normalized response of a checkout. Success is
// always explicit; Status distinguishes a fully complete checkout from
// one where the subscription degraded to null.
type CheckoutResult struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`

	// CheckoutID is a service-generated reference for correlating a
	// checkout across logs and support tickets. It is not a gateway id.
	CheckoutID string `json:"checkoutId"`

	Customer     *GatewayCustomer      `json:"customer"`
	Payment      *PaymentInfo          `json:"payment"`
	Subscription *SubscriptionInfo     `json:"subscription"`
	Splits       *SplitReport          `json:"splits"`
	Summary      *CheckoutSummary      `json:"summary"`
	Pix          *PixPaymentDetails    `json:"pix,omitempty"`
	Boleto       *BoletoPaymentDetails `json:"boleto,omitempty"`
	Card         *CardPaymentDetails   `json:"card,omitempty"`
	Inspection   *InspectionResult     `json:"inspection,omitempty"`
}

// PaymentInfo echoes the one-time charge created at the gateway.
type PaymentInfo struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	BillingType string  `json:"billingType"`
	Value       float64 `json:"value"`
	DueDate     string  `json:"dueDate"`
	InvoiceURL  string  `json:"invoiceUrl,omitempty"`
}

// SubscriptionInfo echoes the recurring monthly subscription, when one
// was created.
type SubscriptionInfo struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Value       float64 `json:"value"`
	NextDueDate string  `json:"nextDueDate"`
}

// SplitReport audits the charge split for the caller: each wallet with
// its percentage and the absolute amount it receives.
type SplitReport struct {
	Affiliates          []SplitAudit `json:"affiliates"`
	TotalPercentual     float64      `json:"totalPercentual"`
	RemainingPercentual float64      `json:"remainingPercentual"`
	ValorTotal          float64      `json:"valorTotal"`
}

// SplitAudit is one audited beneficiary of the charge split.
type SplitAudit struct {
	WalletID   string  `json:"walletId"`
	Percentual float64 `json:"percentual"`
	Value      float64 `json:"value"`
}

// CheckoutSummary recaps what was bought and billed.
type CheckoutSummary struct {
	PlanName       string  `json:"planName,omitempty"`
	MonthlyPayment float64 `json:"monthlyPayment,omitempty"`
	ServicesTotal  float64 `json:"servicesTotal"`
	Discount       float64 `json:"discount"`
	FinalValue     float64 `json:"finalValue"`
	PaymentMethod  string  `json:"paymentMethod"`
	DueDate        string  `json:"dueDate"`
}

// PixPaymentDetails carries the PIX QR artifacts. When the QR could not
// be fetched in time only InvoiceURL is populated.
type PixPaymentDetails struct {
	EncodedImage   string `json:"encodedImage,omitempty"`
	Payload        string `json:"payload,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
	InvoiceURL     string `json:"invoiceUrl,omitempty"`
}

// BoletoPaymentDetails carries the bank-slip artifacts.
type BoletoPaymentDetails struct {
	BankSlipURL string `json:"bankSlipUrl,omitempty"`
	DueDate     string `json:"dueDate"`
	InvoiceURL  string `json:"invoiceUrl,omitempty"`
}

// CardPaymentDetails carries the card-charge artifacts.
type CardPaymentDetails struct {
	InvoiceURL            string `json:"invoiceUrl,omitempty"`
	Status                string `json:"status"`
	TransactionReceiptURL string `json:"transactionReceiptUrl,omitempty"`
}

// InspectionRequest is the payload posted to the vistoria service once
// the charge exists.
type InspectionRequest struct {
	CustomerName     string   `json:"customerName"`
	CustomerEmail    string   `json:"customerEmail"`
	CustomerPhone    string   `json:"customerPhone"`
	CustomerDocument string   `json:"customerDocument"`
	Vehicle          *Vehicle `json:"vehicle,omitempty"`
	PaymentID        string   `json:"paymentId"`
	SubscriptionID   string   `json:"subscriptionId,omitempty"`
	PlanName         string   `json:"planName,omitempty"`
	Value            float64  `json:"value"`
}

// InspectionResult is the vistoria service acknowledgement. Attached to
// the checkout result when available; its absence never fails a checkout.
type InspectionResult struct {
	Protocol string `json:"protocol,omitempty"`
	Status   string `json:"status,omitempty"`
}
