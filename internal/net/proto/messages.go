package proto

// Command codes of the supported message subset.
const (
	CodeEndSpawn             CommandCode = 0x11
	CodeDestroyClientMissile CommandCode = 0x21
	CodePlayerInfo           CommandCode = 0x2A
	CodeChampionRespawn      CommandCode = 0x2F
	CodeStopAutoAttack       CommandCode = 0x34
	CodeUnitAnnounce         CommandCode = 0x3E
	CodeLevelUp              CommandCode = 0x3F
	CodeAnnounce             CommandCode = 0x45
	CodeAutoAttackOption     CommandCode = 0x47
	CodeHeroSpawn            CommandCode = 0x4C
	CodeAttentionPing        CommandCode = 0x57
	CodeAttentionPingAnswer  CommandCode = 0x58
	CodeChampionDie          CommandCode = 0x5A
	CodeStartGame            CommandCode = 0x5C
	CodeChampionDeathTimer   CommandCode = 0x5E
	CodeWaypointUpdate       CommandCode = 0x61
	CodeStartSpawn           CommandCode = 0x62
	CodeClientReady          CommandCode = 0x64
	CodeTurretSpawn          CommandCode = 0x6D
	CodeSpawnProjectile      CommandCode = 0x6E
	CodeMoveRequest          CommandCode = 0x72
	CodeCastSpellRequest     CommandCode = 0x9A
	CodeSetHealth            CommandCode = 0xAE
	CodeEnterVision          CommandCode = 0xBA
	CodeCharLoaded           CommandCode = 0xBE
	CodeGameTimer            CommandCode = 0xC1
	CodeGameTimerUpdate      CommandCode = 0xC2
	CodeDebugMessage         CommandCode = 0xF7
)

// AnnounceEvent enumerates match and unit announcements.
type AnnounceEvent uint8

const (
	AnnounceWelcome AnnounceEvent = iota + 1
	AnnounceMinionsSpawnSoon
	AnnounceMinionsSpawned
	AnnounceChampionKill
	AnnounceTurretDestroyed
	AnnounceSummonerLeft
	AnnounceSummonerReconnected
	AnnounceVictory
	AnnounceDefeat
)

// MoveType enumerates movement order kinds.
type MoveType uint8

const (
	MoveEmote MoveType = iota
	MoveTo
	MoveAttack
	MoveAttackMove
	MoveStop
)

// PingType enumerates attention ping categories.
type PingType uint8

const (
	PingDefault PingType = iota
	PingDanger
	PingMissing
	PingOnMyWay
	PingAssist
)

func init() {
	register(
		func() Message { return &ClientReady{} },
		func() Message { return &CharLoaded{} },
		func() Message { return &MoveRequest{} },
		func() Message { return &CastSpellRequest{} },
		func() Message { return &AttentionPing{} },
		func() Message { return &AutoAttackOption{} },
		func() Message { return &GameTimer{} },
		func() Message { return &GameTimerUpdate{} },
		func() Message { return &StartSpawn{} },
		func() Message { return &EndSpawn{} },
		func() Message { return &HeroSpawn{} },
		func() Message { return &TurretSpawn{} },
		func() Message { return &StartGame{} },
		func() Message { return &EnterVision{} },
		func() Message { return &PlayerInfo{} },
		func() Message { return &SetHealth{} },
		func() Message { return &LevelUp{} },
		func() Message { return &SpawnProjectile{} },
		func() Message { return &DestroyClientMissile{} },
		func() Message { return &StopAutoAttack{} },
		func() Message { return &ChampionDie{} },
		func() Message { return &ChampionDeathTimer{} },
		func() Message { return &ChampionRespawn{} },
		func() Message { return &UnitAnnounce{} },
		func() Message { return &Announce{} },
		func() Message { return &AttentionPingAnswer{} },
		func() Message { return &WaypointUpdate{} },
		func() Message { return &DebugMessage{} },
	)
}

// ClientReady signals that the client finished the handshake.
type ClientReady struct {
	Header
}

func (*ClientReady) Code() CommandCode         { return CodeClientReady }
func (*ClientReady) Channel() Channel          { return ChannelC2S }
func (*ClientReady) Serialize(*Writer)         {}
func (*ClientReady) Deserialize(*Reader) error { return nil }

// CharLoaded signals that the client finished loading champion assets.
type CharLoaded struct {
	Header
}

func (*CharLoaded) Code() CommandCode         { return CodeCharLoaded }
func (*CharLoaded) Channel() Channel          { return ChannelC2S }
func (*CharLoaded) Serialize(*Writer)         {}
func (*CharLoaded) Deserialize(*Reader) error { return nil }

// MoveRequest is a client movement order.
type MoveRequest struct {
	GameHeader
	MoveType    MoveType
	Position    Vec2
	TargetNetID uint32
}

func (*MoveRequest) Code() CommandCode { return CodeMoveRequest }
func (*MoveRequest) Channel() Channel  { return ChannelC2S }

func (m *MoveRequest) Serialize(w *Writer) {
	w.WriteUint8(uint8(m.MoveType))
	w.WriteVec2(m.Position)
	w.WriteUint32(m.TargetNetID)
}

func (m *MoveRequest) Deserialize(r *Reader) error {
	m.MoveType = MoveType(r.ReadUint8())
	m.Position = r.ReadVec2()
	m.TargetNetID = r.ReadUint32()
	return r.Err()
}

// CastSpellRequest is a client order to cast the spell in Slot.
type CastSpellRequest struct {
	GameHeader
	Slot        uint8
	IsSummoner  bool
	Position    Vec2
	EndPosition Vec2
	TargetNetID uint32
}

func (*CastSpellRequest) Code() CommandCode { return CodeCastSpellRequest }
func (*CastSpellRequest) Channel() Channel  { return ChannelC2S }

func (m *CastSpellRequest) Serialize(w *Writer) {
	w.WriteUint8(m.Slot)
	w.WriteBool(m.IsSummoner)
	w.WriteVec2(m.Position)
	w.WriteVec2(m.EndPosition)
	w.WriteUint32(m.TargetNetID)
}

func (m *CastSpellRequest) Deserialize(r *Reader) error {
	m.Slot = r.ReadUint8()
	m.IsSummoner = r.ReadBool()
	m.Position = r.ReadVec2()
	m.EndPosition = r.ReadVec2()
	m.TargetNetID = r.ReadUint32()
	return r.Err()
}

// AttentionPing is a client map ping.
type AttentionPing struct {
	Header
	Position    Vec2
	TargetNetID uint32
	PingType    PingType
}

func (*AttentionPing) Code() CommandCode { return CodeAttentionPing }
func (*AttentionPing) Channel() Channel  { return ChannelC2S }

func (m *AttentionPing) Serialize(w *Writer) {
	w.WriteVec2(m.Position)
	w.WriteUint32(m.TargetNetID)
	w.WriteUint8(uint8(m.PingType))
}

func (m *AttentionPing) Deserialize(r *Reader) error {
	m.Position = r.ReadVec2()
	m.TargetNetID = r.ReadUint32()
	m.PingType = PingType(r.ReadUint8())
	return r.Err()
}

// AutoAttackOption toggles automatic attacks for the sender's hero.
type AutoAttackOption struct {
	Header
	Activated bool
}

func (*AutoAttackOption) Code() CommandCode { return CodeAutoAttackOption }
func (*AutoAttackOption) Channel() Channel  { return ChannelC2S }

func (m *AutoAttackOption) Serialize(w *Writer) {
	w.WriteBool(m.Activated)
}

func (m *AutoAttackOption) Deserialize(r *Reader) error {
	m.Activated = r.ReadBool()
	return r.Err()
}

// GameTimer carries the authoritative game time in seconds.
type GameTimer struct {
	Header
	Time float32
}

func (*GameTimer) Code() CommandCode { return CodeGameTimer }
func (*GameTimer) Channel() Channel  { return ChannelS2C }

func (m *GameTimer) Serialize(w *Writer) {
	w.WriteFloat32(m.Time)
}

func (m *GameTimer) Deserialize(r *Reader) error {
	m.Time = r.ReadFloat32()
	return r.Err()
}

// GameTimerUpdate mirrors GameTimer for clients that resumed mid-match.
type GameTimerUpdate struct {
	Header
	Time float32
}

func (*GameTimerUpdate) Code() CommandCode { return CodeGameTimerUpdate }
func (*GameTimerUpdate) Channel() Channel  { return ChannelS2C }

func (m *GameTimerUpdate) Serialize(w *Writer) {
	w.WriteFloat32(m.Time)
}

func (m *GameTimerUpdate) Deserialize(r *Reader) error {
	m.Time = r.ReadFloat32()
	return r.Err()
}

// StartSpawn opens the spawn sequence.
type StartSpawn struct {
	Header
	BotCountBlue   uint8
	BotCountPurple uint8
}

func (*StartSpawn) Code() CommandCode { return CodeStartSpawn }
func (*StartSpawn) Channel() Channel  { return ChannelS2C }

func (m *StartSpawn) Serialize(w *Writer) {
	w.WriteUint8(m.BotCountBlue)
	w.WriteUint8(m.BotCountPurple)
}

func (m *StartSpawn) Deserialize(r *Reader) error {
	m.BotCountBlue = r.ReadUint8()
	m.BotCountPurple = r.ReadUint8()
	return r.Err()
}

// EndSpawn closes the spawn sequence.
type EndSpawn struct {
	Header
}

func (*EndSpawn) Code() CommandCode         { return CodeEndSpawn }
func (*EndSpawn) Channel() Channel          { return ChannelS2C }
func (*EndSpawn) Serialize(*Writer)         {}
func (*EndSpawn) Deserialize(*Reader) error { return nil }

// HeroSpawn introduces one hero during the spawn sequence.
type HeroSpawn struct {
	Header
	PlayerNo int32
	TeamID   uint16
	SkinID   int32
	Name     string
	Model    string
}

func (*HeroSpawn) Code() CommandCode { return CodeHeroSpawn }
func (*HeroSpawn) Channel() Channel  { return ChannelS2C }

func (m *HeroSpawn) Serialize(w *Writer) {
	w.WriteInt32(m.PlayerNo)
	w.WriteUint16(m.TeamID)
	w.WriteInt32(m.SkinID)
	w.WriteString(m.Name)
	w.WriteString(m.Model)
}

func (m *HeroSpawn) Deserialize(r *Reader) error {
	m.PlayerNo = r.ReadInt32()
	m.TeamID = r.ReadUint16()
	m.SkinID = r.ReadInt32()
	m.Name = r.ReadString()
	m.Model = r.ReadString()
	return r.Err()
}

// TurretSpawn introduces one turret during the spawn sequence.
type TurretSpawn struct {
	Header
	TurretNetID uint32
	Name        string
}

func (*TurretSpawn) Code() CommandCode { return CodeTurretSpawn }
func (*TurretSpawn) Channel() Channel  { return ChannelS2C }

func (m *TurretSpawn) Serialize(w *Writer) {
	w.WriteUint32(m.TurretNetID)
	w.WriteString(m.Name)
}

func (m *TurretSpawn) Deserialize(r *Reader) error {
	m.TurretNetID = r.ReadUint32()
	m.Name = r.ReadString()
	return r.Err()
}

// StartGame releases clients from the loading screen.
type StartGame struct {
	Header
	EnablePause bool
}

func (*StartGame) Code() CommandCode { return CodeStartGame }
func (*StartGame) Channel() Channel  { return ChannelS2C }

func (m *StartGame) Serialize(w *Writer) {
	w.WriteBool(m.EnablePause)
}

func (m *StartGame) Deserialize(r *Reader) error {
	m.EnablePause = r.ReadBool()
	return r.Err()
}

// EnterVision makes a unit visible to the receiving client.
type EnterVision struct {
	GameHeader
	Position    Vec2
	Destination Vec2
}

func (*EnterVision) Code() CommandCode { return CodeEnterVision }
func (*EnterVision) Channel() Channel  { return ChannelS2C }

func (m *EnterVision) Serialize(w *Writer) {
	w.WriteVec2(m.Position)
	w.WriteVec2(m.Destination)
}

func (m *EnterVision) Deserialize(r *Reader) error {
	m.Position = r.ReadVec2()
	m.Destination = r.ReadVec2()
	return r.Err()
}

// PlayerInfo describes a player's summoner spells.
type PlayerInfo struct {
	Header
	Summoner1 uint32
	Summoner2 uint32
}

func (*PlayerInfo) Code() CommandCode { return CodePlayerInfo }
func (*PlayerInfo) Channel() Channel  { return ChannelS2C }

func (m *PlayerInfo) Serialize(w *Writer) {
	w.WriteUint32(m.Summoner1)
	w.WriteUint32(m.Summoner2)
}

func (m *PlayerInfo) Deserialize(r *Reader) error {
	m.Summoner1 = r.ReadUint32()
	m.Summoner2 = r.ReadUint32()
	return r.Err()
}

// SetHealth publishes a unit's health pool.
type SetHealth struct {
	GameHeader
	Current float32
	Max     float32
}

func (*SetHealth) Code() CommandCode { return CodeSetHealth }
func (*SetHealth) Channel() Channel  { return ChannelS2C }

func (m *SetHealth) Serialize(w *Writer) {
	w.WriteFloat32(m.Current)
	w.WriteFloat32(m.Max)
}

func (m *SetHealth) Deserialize(r *Reader) error {
	m.Current = r.ReadFloat32()
	m.Max = r.ReadFloat32()
	return r.Err()
}

// LevelUp announces a hero reaching a new level.
type LevelUp struct {
	GameHeader
	Level       uint8
	SkillPoints uint8
}

func (*LevelUp) Code() CommandCode { return CodeLevelUp }
func (*LevelUp) Channel() Channel  { return ChannelS2C }

func (m *LevelUp) Serialize(w *Writer) {
	w.WriteUint8(m.Level)
	w.WriteUint8(m.SkillPoints)
}

func (m *LevelUp) Deserialize(r *Reader) error {
	m.Level = r.ReadUint8()
	m.SkillPoints = r.ReadUint8()
	return r.Err()
}

// SpawnProjectile creates a client-side missile. Outbound-only.
type SpawnProjectile struct {
	GameHeader
	Position    Vec3
	Start       Vec3
	End         Vec3
	Speed       float32
	SpellHash   uint32
	CasterNetID uint32
	TargetNetID uint32
}

func (*SpawnProjectile) Code() CommandCode { return CodeSpawnProjectile }
func (*SpawnProjectile) Channel() Channel  { return ChannelS2C }

func (m *SpawnProjectile) Serialize(w *Writer) {
	w.WriteVec3(m.Position)
	w.WriteVec3(m.Start)
	w.WriteVec3(m.End)
	w.WriteFloat32(m.Speed)
	w.WriteUint32(m.SpellHash)
	w.WriteUint32(m.CasterNetID)
	w.WriteUint32(m.TargetNetID)
}

// DestroyClientMissile removes a client-side missile.
type DestroyClientMissile struct {
	GameHeader
}

func (*DestroyClientMissile) Code() CommandCode         { return CodeDestroyClientMissile }
func (*DestroyClientMissile) Channel() Channel          { return ChannelS2C }
func (*DestroyClientMissile) Serialize(*Writer)         {}
func (*DestroyClientMissile) Deserialize(*Reader) error { return nil }

// StopAutoAttack cancels a unit's attack animation. Outbound-only; the
// payload is a fixed flag byte and a zero attack slot.
type StopAutoAttack struct {
	Header
}

func (*StopAutoAttack) Code() CommandCode { return CodeStopAutoAttack }
func (*StopAutoAttack) Channel() Channel  { return ChannelS2C }

func (*StopAutoAttack) Serialize(w *Writer) {
	w.WriteUint8(0)
	w.WriteInt32(0)
}

// ChampionDie announces a hero death.
type ChampionDie struct {
	GameHeader
	KillerNetID   uint32
	DeathDuration float32
}

func (*ChampionDie) Code() CommandCode { return CodeChampionDie }
func (*ChampionDie) Channel() Channel  { return ChannelS2C }

func (m *ChampionDie) Serialize(w *Writer) {
	w.WriteUint32(m.KillerNetID)
	w.WriteFloat32(m.DeathDuration)
}

func (m *ChampionDie) Deserialize(r *Reader) error {
	m.KillerNetID = r.ReadUint32()
	m.DeathDuration = r.ReadFloat32()
	return r.Err()
}

// ChampionDeathTimer tells the owner how long until respawn.
type ChampionDeathTimer struct {
	Header
	Remaining float32
}

func (*ChampionDeathTimer) Code() CommandCode { return CodeChampionDeathTimer }
func (*ChampionDeathTimer) Channel() Channel  { return ChannelS2C }

func (m *ChampionDeathTimer) Serialize(w *Writer) {
	w.WriteFloat32(m.Remaining)
}

func (m *ChampionDeathTimer) Deserialize(r *Reader) error {
	m.Remaining = r.ReadFloat32()
	return r.Err()
}

// ChampionRespawn places a respawned hero.
type ChampionRespawn struct {
	GameHeader
	Position Vec2
}

func (*ChampionRespawn) Code() CommandCode { return CodeChampionRespawn }
func (*ChampionRespawn) Channel() Channel  { return ChannelS2C }

func (m *ChampionRespawn) Serialize(w *Writer) {
	w.WriteVec2(m.Position)
}

func (m *ChampionRespawn) Deserialize(r *Reader) error {
	m.Position = r.ReadVec2()
	return r.Err()
}

// UnitAnnounce reports a unit-scoped event such as a kill.
type UnitAnnounce struct {
	GameHeader
	Event       AnnounceEvent
	SourceNetID uint32
	Assists     []uint32
}

func (*UnitAnnounce) Code() CommandCode { return CodeUnitAnnounce }
func (*UnitAnnounce) Channel() Channel  { return ChannelS2C }

func (m *UnitAnnounce) Serialize(w *Writer) {
	w.WriteUint8(uint8(m.Event))
	w.WriteUint32(m.SourceNetID)
	w.WriteCount(len(m.Assists))
	for _, id := range m.Assists {
		w.WriteUint32(id)
	}
}

func (m *UnitAnnounce) Deserialize(r *Reader) error {
	m.Event = AnnounceEvent(r.ReadUint8())
	m.SourceNetID = r.ReadUint32()
	n := r.ReadCount()
	m.Assists = nil
	if n > 0 {
		m.Assists = make([]uint32, 0, n)
	}
	for i := 0; i < n && r.Err() == nil; i++ {
		m.Assists = append(m.Assists, r.ReadUint32())
	}
	return r.Err()
}

// Announce reports a match-wide event.
type Announce struct {
	Header
	MapID int32
	Event AnnounceEvent
}

func (*Announce) Code() CommandCode { return CodeAnnounce }
func (*Announce) Channel() Channel  { return ChannelS2C }

func (m *Announce) Serialize(w *Writer) {
	w.WriteInt32(m.MapID)
	w.WriteUint8(uint8(m.Event))
}

func (m *Announce) Deserialize(r *Reader) error {
	m.MapID = r.ReadInt32()
	m.Event = AnnounceEvent(r.ReadUint8())
	return r.Err()
}

// AttentionPingAnswer relays a ping to the sender's team.
type AttentionPingAnswer struct {
	Header
	Position    Vec2
	TargetNetID uint32
	PingType    PingType
}

func (*AttentionPingAnswer) Code() CommandCode { return CodeAttentionPingAnswer }
func (*AttentionPingAnswer) Channel() Channel  { return ChannelS2C }

func (m *AttentionPingAnswer) Serialize(w *Writer) {
	w.WriteVec2(m.Position)
	w.WriteUint32(m.TargetNetID)
	w.WriteUint8(uint8(m.PingType))
}

func (m *AttentionPingAnswer) Deserialize(r *Reader) error {
	m.Position = r.ReadVec2()
	m.TargetNetID = r.ReadUint32()
	m.PingType = PingType(r.ReadUint8())
	return r.Err()
}

// WaypointUpdate publishes a unit's current path segment.
type WaypointUpdate struct {
	GameHeader
	Position    Vec2
	Destination Vec2
	Speed       float32
}

func (*WaypointUpdate) Code() CommandCode { return CodeWaypointUpdate }
func (*WaypointUpdate) Channel() Channel  { return ChannelLowPriority }

func (m *WaypointUpdate) Serialize(w *Writer) {
	w.WriteVec2(m.Position)
	w.WriteVec2(m.Destination)
	w.WriteFloat32(m.Speed)
}

func (m *WaypointUpdate) Deserialize(r *Reader) error {
	m.Position = r.ReadVec2()
	m.Destination = r.ReadVec2()
	m.Speed = r.ReadFloat32()
	return r.Err()
}

// DebugMessage shows free text in the client chat box.
type DebugMessage struct {
	Header
	Text string
}

func (*DebugMessage) Code() CommandCode { return CodeDebugMessage }
func (*DebugMessage) Channel() Channel  { return ChannelCommunication }

func (m *DebugMessage) Serialize(w *Writer) {
	w.WriteString(m.Text)
}

func (m *DebugMessage) Deserialize(r *Reader) error {
	m.Text = r.ReadString()
	return r.Err()
}
