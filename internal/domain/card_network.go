package domain

import "strconv"

// CardNetwork identifies the card scheme detected from a PAN prefix.
type CardNetwork string

const (
	CardNetworkAmex       CardNetwork = "AMEX"
	CardNetworkDiners     CardNetwork = "DINERS_CLUB"
	CardNetworkDiscover   CardNetwork = "DISCOVER"
	CardNetworkElo        CardNetwork = "ELO"
	CardNetworkHiper      CardNetwork = "HIPER"
	CardNetworkHipercard  CardNetwork = "HIPERCARD"
	CardNetworkJCB        CardNetwork = "JCB"
	CardNetworkMaestro    CardNetwork = "MAESTRO"
	CardNetworkMastercard CardNetwork = "MASTERCARD"
	CardNetworkMir        CardNetwork = "MIR"
	CardNetworkVisa       CardNetwork = "VISA"
	CardNetworkUnionPay   CardNetwork = "UNIONPAY"
	CardNetworkUnknown    CardNetwork = "OTHER"
)

// SecurityCode describes a network's card verification code.
type SecurityCode struct {
	Name   string
	Length int
}

// CardNetworkValidation carries per-network PAN metadata: the BIN prefix
// patterns used for detection, the digit-group boundaries used for display
// formatting, and the set of valid PAN lengths.
type CardNetworkValidation struct {
	DisplayName string
	// Patterns are single prefixes ([n]) or inclusive prefix ranges ([lo, hi]).
	Patterns [][]int
	Gaps     []int
	Lengths  []int
	Code     SecurityCode
}

var cardNetworkValidations = map[CardNetwork]CardNetworkValidation{
	CardNetworkAmex: {
		DisplayName: "American Express",
		Patterns:    [][]int{{34}, {37}},
		Gaps:        []int{4, 10},
		Lengths:     []int{15},
		Code:        SecurityCode{Name: "CID", Length: 4},
	},
	CardNetworkDiners: {
		DisplayName: "Diners",
		Patterns:    [][]int{{300, 305}, {36}, {38}, {39}},
		Gaps:        []int{4, 10},
		Lengths:     []int{14, 16, 19},
		Code:        SecurityCode{Name: "CVV", Length: 3},
	},
	CardNetworkDiscover: {
		DisplayName: "Discover",
		Patterns:    [][]int{{6011}, {644, 649}, {65}},
		Gaps:        []int{4, 8, 12},
		Lengths:     []int{16, 19},
		Code:        SecurityCode{Name: "CID", Length: 3},
	},
	CardNetworkElo: {
		DisplayName: "Elo",
		Patterns: [][]int{
			{401178}, {401179}, {438935}, {457631}, {457632}, {431274},
			{451416}, {457393}, {504175}, {506699, 506778}, {509000, 509999},
			{627780}, {636297}, {636368}, {650031, 650033}, {650035, 650051},
			{650405, 650439}, {650485, 650538}, {650541, 650598},
			{650700, 650718}, {650720, 650727}, {650901, 650978},
			{651652, 651679}, {655000, 655019}, {655021, 655058},
		},
		Gaps:    []int{4, 8, 12},
		Lengths: []int{16},
		Code:    SecurityCode{Name: "CVE", Length: 3},
	},
	CardNetworkHiper: {
		DisplayName: "Hiper",
		Patterns:    [][]int{{637095}, {63737423}, {63743358}, {637568}, {637599}, {637609}, {637612}},
		Gaps:        []int{4, 8, 12},
		Lengths:     []int{16},
		Code:        SecurityCode{Name: "CVC", Length: 3},
	},
	CardNetworkHipercard: {
		DisplayName: "Hipercard",
		Patterns:    [][]int{{606282}},
		Gaps:        []int{4, 8, 12},
		Lengths:     []int{16},
		Code:        SecurityCode{Name: "CVC", Length: 3},
	},
	CardNetworkJCB: {
		DisplayName: "JCB",
		Patterns:    [][]int{{2131}, {1800}, {3528, 3589}},
		Gaps:        []int{4, 8, 12},
		Lengths:     []int{16, 17, 18, 19},
		Code:        SecurityCode{Name: "CVV", Length: 3},
	},
	CardNetworkMaestro: {
		DisplayName: "Maestro",
		Patterns: [][]int{
			{493698}, {500000, 504174}, {504176, 506698}, {506779, 508999},
			{56, 59}, {63}, {67}, {6},
		},
		Gaps:    []int{4, 8, 12},
		Lengths: []int{16, 17, 18, 19},
		Code:    SecurityCode{Name: "CVC", Length: 3},
	},
	CardNetworkMastercard: {
		DisplayName: "Mastercard",
		Patterns:    [][]int{{51, 55}, {2221, 2229}, {223, 229}, {23, 26}, {270, 271}, {2720}},
		Gaps:        []int{4, 10},
		Lengths:     []int{16},
		Code:        SecurityCode{Name: "CVC", Length: 3},
	},
	CardNetworkMir: {
		DisplayName: "Mir",
		Patterns:    [][]int{{2200, 2204}},
		Gaps:        []int{4, 8, 12},
		Lengths:     []int{16, 17, 18, 19},
		Code:        SecurityCode{Name: "CVP2", Length: 3},
	},
	CardNetworkVisa: {
		DisplayName: "Visa",
		Patterns:    [][]int{{4}},
		Gaps:        []int{4, 8, 12},
		Lengths:     []int{16, 18, 19},
		Code:        SecurityCode{Name: "CVV", Length: 3},
	},
	CardNetworkUnionPay: {
		DisplayName: "UnionPay",
		Patterns: [][]int{
			{620}, {624, 626}, {62100, 62182}, {62184, 62187}, {62185, 62197},
			{62200, 62205}, {622010, 622999}, {62207, 62209}, {622126, 622925},
			{623, 626}, {6270}, {6272}, {6276}, {627700, 627779},
			{627781, 627799}, {6282, 6289}, {6291}, {6292}, {810},
			{8110, 8131}, {8132, 8151}, {8152, 8163}, {8164, 8171},
		},
		Gaps:    []int{4, 8, 12},
		Lengths: []int{14, 15, 16, 17, 18, 19},
		Code:    SecurityCode{Name: "CVN", Length: 3},
	},
}

// detectionOrder fixes the precedence used when several networks share a
// prefix space. More specific schemes are checked before Maestro's catch-all
// "6" pattern.
var detectionOrder = []CardNetwork{
	CardNetworkAmex,
	CardNetworkDiners,
	CardNetworkDiscover,
	CardNetworkElo,
	CardNetworkHiper,
	CardNetworkHipercard,
	CardNetworkJCB,
	CardNetworkMastercard,
	CardNetworkMir,
	CardNetworkVisa,
	CardNetworkUnionPay,
	CardNetworkMaestro,
}

// Validation returns the network's PAN metadata, or ok=false for networks
// without local validation rules (including Unknown).
func (n CardNetwork) Validation() (CardNetworkValidation, bool) {
	v, ok := cardNetworkValidations[n]
	return v, ok
}

// DisplayName returns the human-readable scheme name.
func (n CardNetwork) DisplayName() string {
	if v, ok := n.Validation(); ok {
		return v.DisplayName
	}
	return string(n)
}

// CVVLength returns the expected security-code length for the network, or
// ok=false when the network imposes no specific length.
func (n CardNetwork) CVVLength() (int, bool) {
	v, ok := n.Validation()
	if !ok {
		return 0, false
	}
	return v.Code.Length, true
}

// DetectCardNetwork resolves a card network from the leading digits of a PAN.
// The input must already be stripped of formatting. Numbers matching no known
// prefix (or empty input) resolve to CardNetworkUnknown.
func DetectCardNetwork(cardNumber string) CardNetwork {
	if cardNumber == "" {
		return CardNetworkUnknown
	}
	for _, network := range detectionOrder {
		v := cardNetworkValidations[network]
		for _, pattern := range v.Patterns {
			if matchesPrefixPattern(cardNumber, pattern) {
				return network
			}
		}
	}
	return CardNetworkUnknown
}

func matchesPrefixPattern(cardNumber string, pattern []int) bool {
	lo := pattern[0]
	hi := lo
	if len(pattern) == 2 {
		hi = pattern[1]
	}
	width := len(strconv.Itoa(lo))
	if len(cardNumber) < width {
		// Not enough digits typed yet to commit to this pattern.
		return false
	}
	prefix, err := strconv.Atoi(cardNumber[:width])
	if err != nil {
		return false
	}
	return prefix >= lo && prefix <= hi
}
