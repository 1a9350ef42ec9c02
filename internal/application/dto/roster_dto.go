package dto

// RosterRow fila del roster tabular de clientes (import/export CSV).
// Todas las columnas son texto: la conversión se hace fila a fila para que una fila
// inválida no impida importar las demás. Teléfonos y emails van separados por ";".
type RosterRow struct {
	ID                     string `csv:"id"`
	ClientName             string `csv:"clientName"`
	AccountName            string `csv:"accountName"`
	KitNumber              string `csv:"kitNumber"`
	KitStatus              string `csv:"kitStatus"`
	PaymentStatus          string `csv:"paymentStatus"`
	OriginalAmount         string `csv:"originalAmount.amount"`
	OriginalAmountCurrency string `csv:"originalAmount.currency"`
	BillingAmount          string `csv:"billingAmount.amount"`
	Phones                 string `csv:"phones"`
	Emails                 string `csv:"emails"`
	WhatsApp               string `csv:"whatsapp"`
	ActivationDate         string `csv:"activationDate"`
	BillingDate            string `csv:"billingDate"`
	Notes                  string `csv:"notes"`
}
