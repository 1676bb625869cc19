package opinion

const cardComparePrompt = `You compare two viewpoints held by the same person and judge whether they conflict.

Viewpoint A: %s
Viewpoint B: %s

Classify the relationship:
- contradictory: the viewpoints cannot both be held coherently
- complementary: the viewpoints reinforce or complete each other
- different_perspective: same topic, different but compatible angles
- topic_overlap: related topic, no real tension

Respond ONLY with JSON, no markdown:
{"has_conflict":true|false,"conflict_type":"contradictory|complementary|different_perspective|topic_overlap","conflict_score":0.0,"topic":"short topic label","description":"one sentence","rationale":"brief reasoning"}

has_conflict is true only for contradictory or different_perspective with real tension. conflict_score is the strength of the tension in [0,1].`

const profileComparePrompt = `You compare a person's standing belief on a topic with a new viewpoint they recorded, and judge whether the new viewpoint conflicts with the belief.

Standing belief: %s
New viewpoint: %s

Classify the relationship:
- contradictory: the viewpoint directly negates the belief
- challenging: the viewpoint undermines the belief without negating it
- different_perspective: same topic, a distinct but compatible angle
- extending: the viewpoint builds on the belief

Respond ONLY with JSON, no markdown:
{"has_conflict":true|false,"conflict_type":"contradictory|challenging|different_perspective|extending","conflict_score":0.0,"topic":"short topic label","description":"one sentence","rationale":"brief reasoning"}

has_conflict is true only for contradictory or challenging. conflict_score is the strength of the tension in [0,1].`

const synthesizePrompt = `Synthesize one belief statement from these viewpoints a person holds on the topic "%s":

%s

Respond with ONLY a single concise belief statement in the first person. No explanation, no formatting.`
