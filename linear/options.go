package linear

// Option configures a LinearRegression.
type Option func(*LinearRegression)

// WithFitIntercept sets whether an intercept is fitted. Default true.
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}
