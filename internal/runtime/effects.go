package runtime

import "github.com/aretw0/actionchain/pkg/domain"

// aggregateEffects merges the chain-level effects with those of the executed
// actions, in execution order. The first effect on a target entity wins.
func aggregateEffects(p *Plan, executed []int) []domain.Effect {
	lists := make([][]domain.Effect, 0, len(executed)+1)
	lists = append(lists, attribute(p.Effects, p.Name))
	for _, i := range executed {
		action := p.Actions[i]
		lists = append(lists, attribute(action.Effects(), action.Identity()))
	}
	return domain.MergeEffects(lists...)
}

// DeclaredEffects is what a chain announces before it runs: its own effects
// followed by those of every configured action.
func DeclaredEffects(p *Plan) []domain.Effect {
	lists := make([][]domain.Effect, 0, len(p.Actions)+1)
	lists = append(lists, attribute(p.Effects, p.Name))
	for _, action := range p.Actions {
		lists = append(lists, attribute(action.Effects(), action.Identity()))
	}
	return domain.MergeEffects(lists...)
}

func attribute(effects []domain.Effect, source string) []domain.Effect {
	out := make([]domain.Effect, len(effects))
	for i, eff := range effects {
		if eff.Source == "" {
			eff.Source = source
		}
		out[i] = eff
	}
	return out
}
