package schema

import "github.com/aretw0/actionchain/pkg/domain"

// TypeChain is the action type of a nested chain.
const TypeChain = "chain"

// DefaultMessageDelimiter joins the messages of executed actions.
const DefaultMessageDelimiter = "\n"

// ChainConfig is the definition of an action chain.
type ChainConfig struct {
	Name        string          `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Icon        string          `json:"icon,omitempty" yaml:"icon,omitempty" mapstructure:"icon"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Message     string          `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
	Effects     []domain.Effect `json:"effects,omitempty" yaml:"effects,omitempty" mapstructure:"effects"`

	UseSingleTransaction    *bool   `json:"use_single_transaction,omitempty" yaml:"use_single_transaction,omitempty" mapstructure:"use_single_transaction"`
	UseResultOfAction       *int    `json:"use_result_of_action,omitempty" yaml:"use_result_of_action,omitempty" mapstructure:"use_result_of_action"`
	UseInputDataOfAction    *int    `json:"use_input_data_of_action,omitempty" yaml:"use_input_data_of_action,omitempty" mapstructure:"use_input_data_of_action"`
	SkipActionsIfInputEmpty bool    `json:"skip_actions_if_input_empty,omitempty" yaml:"skip_actions_if_input_empty,omitempty" mapstructure:"skip_actions_if_input_empty"`
	ResultMessageDelimiter  *string `json:"result_message_delimiter,omitempty" yaml:"result_message_delimiter,omitempty" mapstructure:"result_message_delimiter"`

	Actions []ActionConfig `json:"actions" yaml:"actions" mapstructure:"actions"`
}

// SingleTransaction returns use_single_transaction, defaulting to true.
func (c *ChainConfig) SingleTransaction() bool {
	if c.UseSingleTransaction == nil {
		return true
	}
	return *c.UseSingleTransaction
}

// MessageDelimiter returns result_message_delimiter, defaulting to a newline.
func (c *ChainConfig) MessageDelimiter() string {
	if c.ResultMessageDelimiter == nil {
		return DefaultMessageDelimiter
	}
	return *c.ResultMessageDelimiter
}

// ActionConfig is the definition of one step.
type ActionConfig struct {
	Type         string          `json:"type" yaml:"type" mapstructure:"type"`
	Name         string          `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Icon         string          `json:"icon,omitempty" yaml:"icon,omitempty" mapstructure:"icon"`
	InputRowsMin *int            `json:"input_rows_min,omitempty" yaml:"input_rows_min,omitempty" mapstructure:"input_rows_min"`
	InputRowsMax *int            `json:"input_rows_max,omitempty" yaml:"input_rows_max,omitempty" mapstructure:"input_rows_max"`
	Args         map[string]any  `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
	Effects      []domain.Effect `json:"effects,omitempty" yaml:"effects,omitempty" mapstructure:"effects"`

	// Chain is the nested definition of a "chain" step.
	Chain *ChainConfig `json:"chain,omitempty" yaml:"chain,omitempty" mapstructure:"chain"`
}

// Kind returns the action type, treating a step with a nested chain and no
// explicit type as a chain step.
func (a ActionConfig) Kind() string {
	if a.Type == "" && a.Chain != nil {
		return TypeChain
	}
	return a.Type
}

// Bool returns a pointer to v, for building configurations in code.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
