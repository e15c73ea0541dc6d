package schema

import (
	"fmt"

	"github.com/aretw0/actionchain/pkg/domain"
)

// Validate checks a chain definition, including nested chains, and returns
// every problem found as an *AggregateError.
func Validate(cfg *ChainConfig) error {
	var errs []error
	validateChain(cfg, "", &errs)

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func validateChain(cfg *ChainConfig, prefix string, errs *[]error) {
	if cfg == nil {
		*errs = append(*errs, &domain.ConfigurationError{
			Field:  prefix + "actions",
			Reason: "chain definition is missing",
			Err:    domain.ErrEmptyChain,
		})
		return
	}

	n := len(cfg.Actions)
	if n == 0 {
		*errs = append(*errs, &domain.ConfigurationError{
			Field:  prefix + "actions",
			Reason: "at least one action is required",
			Err:    domain.ErrEmptyChain,
		})
	}

	checkIndex(prefix+"use_result_of_action", cfg.UseResultOfAction, n, errs)
	checkIndex(prefix+"use_input_data_of_action", cfg.UseInputDataOfAction, n, errs)

	for i, action := range cfg.Actions {
		path := fmt.Sprintf("%sactions[%d]", prefix, i)

		switch action.Kind() {
		case "":
			*errs = append(*errs, &domain.ConfigurationError{
				Field:  path + ".type",
				Reason: "action type is required",
				Err:    domain.ErrUnknownActionType,
			})
		case TypeChain:
			validateChain(action.Chain, path+".chain.", errs)
		}

		if action.InputRowsMin != nil && *action.InputRowsMin < 0 {
			*errs = append(*errs, &domain.ConfigurationError{
				Field:  path + ".input_rows_min",
				Reason: "must not be negative",
				Value:  *action.InputRowsMin,
			})
		}
		if action.InputRowsMin != nil && action.InputRowsMax != nil && *action.InputRowsMax > 0 && *action.InputRowsMax < *action.InputRowsMin {
			*errs = append(*errs, &domain.ConfigurationError{
				Field:  path + ".input_rows_max",
				Reason: "must not be lower than input_rows_min",
				Value:  *action.InputRowsMax,
			})
		}
	}
}

func checkIndex(field string, idx *int, n int, errs *[]error) {
	if idx == nil {
		return
	}
	if *idx < 0 || *idx >= n {
		*errs = append(*errs, &domain.ConfigurationError{
			Field:  field,
			Reason: fmt.Sprintf("must reference one of the %d configured actions", n),
			Value:  *idx,
			Err:    domain.ErrIndexOutOfRange,
		})
	}
}
