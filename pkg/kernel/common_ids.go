package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type SkillID string

func NewSkillID(id string) SkillID { return SkillID(id) }
func (s SkillID) String() string   { return string(s) }
func (s SkillID) IsEmpty() bool    { return string(s) == "" }
