// Package sunat utilidades del régimen de comprobantes electrónicos SUNAT (Perú).
package sunat

import (
	"fmt"
	"unicode"
)

// Estados de envío que puede devolver el gateway SUNAT.
const (
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
	StatusExcepted = "EXCEPTED"
)

// pesos para el dígito verificador del RUC (módulo 11, SUNAT).
// Se aplican a los 10 primeros dígitos, de izquierda a derecha.
var rucWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// IsRUC indica si el documento de identidad es un RUC: exactamente 11 dígitos.
// Es la regla de clasificación de comprobante: RUC => FACTURA, si no BOLETA.
func IsRUC(docNumber string) bool {
	digits := extractDigits(docNumber)
	return len(digits) == 11
}

// ValidateRUCCheckDigit valida el dígito verificador del RUC según el
// algoritmo módulo 11 de la SUNAT. Acepta el RUC con o sin separadores.
func ValidateRUCCheckDigit(ruc string) error {
	digits := extractDigits(ruc)
	if len(digits) != 11 {
		return fmt.Errorf("sunat: el RUC debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	var sum int
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * rucWeights[i]
	}
	check := 11 - sum%11
	if check >= 10 {
		check -= 10
	}
	if byte('0'+check) != digits[10] {
		return fmt.Errorf("sunat: dígito verificador del RUC inválido: esperado %d, recibido %c", check, digits[10])
	}
	return nil
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
