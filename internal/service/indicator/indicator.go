// Package indicator implements the technical indicators the scoring
// engine consumes. All functions return slices aligned with the input;
// positions before the warmup window hold NaN.
package indicator

import "math"

// SMA computes a simple moving average over period bars.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes an exponential moving average seeded with the first value.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD returns the MACD line, signal line and histogram with the
// standard 12/26/9 parameters.
func MACD(closes []float64) (macd, signal, hist []float64) {
	fast := EMA(closes, 12)
	slow := EMA(closes, 26)
	macd = nanSlice(len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}
	signal = EMA(macd, 9)
	hist = nanSlice(len(closes))
	for i := range closes {
		hist[i] = macd[i] - signal[i]
	}
	return macd, signal, hist
}

// RSI computes the relative strength index with Wilder smoothing.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}
	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Bollinger returns the middle band plus upper and lower bands at
// width standard deviations.
func Bollinger(closes []float64, period int, width float64) (mid, upper, lower []float64) {
	mid = SMA(closes, period)
	std := RollingStd(closes, period)
	upper = nanSlice(len(closes))
	lower = nanSlice(len(closes))
	for i := range closes {
		upper[i] = mid[i] + width*std[i]
		lower[i] = mid[i] - width*std[i]
	}
	return mid, upper, lower
}

// RollingStd computes the rolling sample standard deviation.
func RollingStd(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 1 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(period)
		var sq float64
		for _, v := range window {
			d := v - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(period-1))
	}
	return out
}

// VolumeRatio compares each day's volume with the mean volume of the
// period bars preceding it, as a fractional change. A reading of +1.0
// means today traded double its trailing average.
func VolumeRatio(volumes []float64, period int) []float64 {
	out := nanSlice(len(volumes))
	if period <= 0 {
		return out
	}
	for i := period; i < len(volumes); i++ {
		var base float64
		for j := i - period; j < i; j++ {
			base += volumes[j]
		}
		base /= float64(period)
		if base == 0 {
			continue
		}
		out[i] = volumes[i]/base - 1
	}
	return out
}

// ADX computes the average directional index. The DX window is a plain
// rolling mean rather than Wilder smoothing.
func ADX(highs, lows, closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 1 || len(closes) < 2 {
		return out
	}
	dx := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]
		dmPlus, dmMinus := 0.0, 0.0
		if upMove > downMove && upMove > 0 {
			dmPlus = upMove
		}
		if downMove > upMove && downMove > 0 {
			dmMinus = downMove
		}
		tr := trueRange(highs[i], lows[i], closes[i-1])
		var diPlus, diMinus float64
		if tr > 0 {
			diPlus = 100 * dmPlus / tr
			diMinus = 100 * dmMinus / tr
		}
		denom := diPlus + diMinus
		d := 0.0
		if denom > 0 {
			d = math.Abs(diPlus-diMinus) / denom * 100
		}
		dx = append(dx, d)
		if len(dx) >= period {
			sum := 0.0
			for _, v := range dx[len(dx)-period:] {
				sum += v
			}
			out[i] = sum / float64(period)
		}
	}
	return out
}

func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if d := math.Abs(high - prevClose); d > tr {
		tr = d
	}
	if d := math.Abs(low - prevClose); d > tr {
		tr = d
	}
	return tr
}

// Ready reports whether every value is a real number.
func Ready(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
