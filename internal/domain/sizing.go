package domain

// sizing.go — cálculo de tamaño balanceado para los dos legs.
//
// Con gasto igual en dólares por lado, el ratio de cantidades es
// qtyYes/qtyNo = noPrice/yesPrice. Para precios cercanos (el caso normal en
// mercados con arbitraje: ambos por debajo de 0.5-0.6) el desbalance es
// pequeño; cuando excede la tolerancia se iguala la cantidad al leg más caro
// y se reduce el gasto del otro lado, que por construcción queda balanceado.

// SizedPair es el resultado del sizing: cantidad y gasto por leg.
type SizedPair struct {
	QtyYes   float64
	QtyNo    float64
	SpendYes float64
	SpendNo  float64
}

// TotalSpend devuelve el gasto total de ambos legs.
func (s SizedPair) TotalSpend() float64 {
	return s.SpendYes + s.SpendNo
}

// IsZero devuelve true si el sizing no produjo posición.
func (s SizedPair) IsZero() bool {
	return s.QtyYes <= 0 && s.QtyNo <= 0
}

// BalancedSize calcula cantidades YES/NO gastando como máximo maxSpend por
// leg, de forma que min(qty)/max(qty) >= 1-tolerance.
//
// La asignación por defecto es gasto igual por lado. Si el desbalance de
// cantidades excede la tolerancia, la cantidad del lado barato se recorta a
// la del lado caro (qtyYes == qtyNo exacto), gastando menos en el lado
// barato. Devuelve el resultado cero solo si maxSpend <= 0 o algún precio
// es inválido.
func BalancedSize(yesPrice, noPrice, maxSpend, tolerance float64) SizedPair {
	if maxSpend <= 0 || yesPrice <= 0 || noPrice <= 0 {
		return SizedPair{}
	}

	qtyYes := maxSpend / yesPrice
	qtyNo := maxSpend / noPrice

	ratio := min(qtyYes, qtyNo) / max(qtyYes, qtyNo)
	if ratio >= 1.0-tolerance {
		return SizedPair{
			QtyYes:   qtyYes,
			QtyNo:    qtyNo,
			SpendYes: maxSpend,
			SpendNo:  maxSpend,
		}
	}

	// Desbalance fuera de tolerancia: igualar cantidades al leg más caro.
	// El leg caro ya consume maxSpend completo; el barato gasta menos.
	qty := min(qtyYes, qtyNo)
	return SizedPair{
		QtyYes:   qty,
		QtyNo:    qty,
		SpendYes: qty * yesPrice,
		SpendNo:  qty * noPrice,
	}
}
